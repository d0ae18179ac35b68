package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// handleTimeLogs handles EVV time log routes
func (h *V1Handler) handleTimeLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	parts := pathParts(r, "/api/v1/time-logs")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			logs, err := h.timeLogService.ListTimeLogs(r.Context(), actor)
			if err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, logs)
		default:
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	// Action endpoints take precedence over id lookups.
	if len(parts) == 1 {
		switch parts[0] {
		case "clock-in":
			h.handleClockIn(w, r)
			return
		case "clock-out":
			h.handleClockOut(w, r)
			return
		case "override":
			h.handleOverride(w, r)
			return
		}
	}

	id, ok := parseID(w, parts[0])
	if !ok {
		return
	}

	if len(parts) == 2 && parts[1] == "restore" {
		if r.Method != http.MethodPost {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if err := h.timeLogService.RestoreTimeLog(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "restored"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		log, err := h.timeLogService.GetTimeLog(r.Context(), actor, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, log)
	case http.MethodDelete:
		if err := h.timeLogService.DeleteTimeLog(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *V1Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.GetActor(r.Context())
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	log, err := h.timeLogService.ClockIn(r.Context(), actor, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, log)
}

func (h *V1Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.GetActor(r.Context())
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	log, err := h.timeLogService.ClockOut(r.Context(), actor, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, log)
}

func (h *V1Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.GetActor(r.Context())
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.OverrideTimeLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	log, err := h.timeLogService.Override(r.Context(), actor, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, log)
}
