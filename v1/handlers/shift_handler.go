package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// handleShifts handles shift scheduling routes
func (h *V1Handler) handleShifts(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	parts := pathParts(r, "/api/v1/shifts")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			shifts, err := h.shiftService.ListShifts(r.Context(), actor)
			if err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, shifts)
		case http.MethodPost:
			var shift models.Shift
			if err := json.NewDecoder(r.Body).Decode(&shift); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if err := h.shiftService.CreateShift(r.Context(), actor, &shift); err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusCreated, shift)
		default:
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
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
		if err := h.shiftService.RestoreShift(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "restored"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		shift, err := h.shiftService.GetShift(r.Context(), actor, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, shift)
	case http.MethodPatch, http.MethodPut:
		var req models.UpdateShiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		shift, err := h.shiftService.UpdateShift(r.Context(), actor, id, &req)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, shift)
	case http.MethodDelete:
		if err := h.shiftService.DeleteShift(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAssignments creates standing caregiver-to-client assignments
func (h *V1Handler) handleAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var assignment models.CareAssignment
	if err := json.NewDecoder(r.Body).Decode(&assignment); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.shiftService.AssignCaregiver(r.Context(), actor, &assignment); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, assignment)
}
