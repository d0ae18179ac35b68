package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// handleCaregivers handles caregiver-related routes
func (h *V1Handler) handleCaregivers(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	parts := pathParts(r, "/api/v1/caregivers")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			caregivers, err := h.caregiverService.ListCaregivers(r.Context(), actor)
			if err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, caregivers)
		case http.MethodPost:
			var caregiver models.Caregiver
			if err := json.NewDecoder(r.Body).Decode(&caregiver); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if err := h.caregiverService.CreateCaregiver(r.Context(), actor, &caregiver); err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusCreated, caregiver)
		default:
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	id, ok := parseID(w, parts[0])
	if !ok {
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "credentials":
			h.handleCredentials(w, r, id)
		case "restore":
			if r.Method != http.MethodPost {
				utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			if err := h.caregiverService.RestoreCaregiver(r.Context(), actor, id); err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "restored"})
		default:
			utils.RespondWithError(w, http.StatusNotFound, "Resource not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		caregiver, err := h.caregiverService.GetCaregiver(r.Context(), actor, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, caregiver)
	case http.MethodPatch, http.MethodPut:
		var req models.UpdateCaregiverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		caregiver, err := h.caregiverService.UpdateCaregiver(r.Context(), actor, id, &req)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, caregiver)
	case http.MethodDelete:
		if err := h.caregiverService.DeleteCaregiver(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *V1Handler) handleCredentials(w http.ResponseWriter, r *http.Request, caregiverID uuid.UUID) {
	actor, _ := utils.GetActor(r.Context())

	switch r.Method {
	case http.MethodGet:
		credentials, err := h.caregiverService.ListCredentials(r.Context(), actor, caregiverID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, credentials)
	case http.MethodPost:
		var credential models.Credential
		if err := json.NewDecoder(r.Body).Decode(&credential); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.caregiverService.AddCredential(r.Context(), actor, caregiverID, &credential); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, credential)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
