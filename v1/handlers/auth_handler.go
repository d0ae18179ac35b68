package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/treehousetherapy/curelia-health/v1/utils"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// handleAuth handles authentication routes
func (h *V1Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/auth/")
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch path {
	case "login":
		h.handleLogin(w, r)
	case "logout":
		h.handleLogout(w, r)
	case "change-password":
		h.handleChangePassword(w, r)
	default:
		utils.RespondWithError(w, http.StatusNotFound, "Resource not found")
	}
}

// handleLogin authenticates an email/password pair. Every failure maps
// to the same response so callers cannot probe which accounts exist or
// are locked.
func (h *V1Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.guard.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  result.User,
	})
}

func (h *V1Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	sessionID, _ := utils.GetSessionID(r.Context())

	if err := h.guard.Logout(r.Context(), actor, sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *V1Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "New password must be at least 8 characters")
		return
	}

	if err := h.guard.ChangePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
