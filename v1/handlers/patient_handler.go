package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// handlePatients handles patient-related routes
func (h *V1Handler) handlePatients(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	parts := pathParts(r, "/api/v1/patients")

	// Collection endpoint
	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			patients, err := h.patientService.ListPatients(r.Context(), actor)
			if err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, patients)
		case http.MethodPost:
			var patient models.Patient
			if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if err := h.patientService.CreatePatient(r.Context(), actor, &patient); err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusCreated, patient)
		default:
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	id, ok := parseID(w, parts[0])
	if !ok {
		return
	}

	// Sub-resource endpoints
	if len(parts) == 2 {
		switch parts[1] {
		case "contacts":
			h.handlePatientContacts(w, r, id)
		case "restore":
			if r.Method != http.MethodPost {
				utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			if err := h.patientService.RestorePatient(r.Context(), actor, id); err != nil {
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
		patient, err := h.patientService.GetPatient(r.Context(), actor, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, patient)
	case http.MethodPatch, http.MethodPut:
		var req models.UpdatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		patient, err := h.patientService.UpdatePatient(r.Context(), actor, id, &req)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, patient)
	case http.MethodDelete:
		if err := h.patientService.DeletePatient(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *V1Handler) handlePatientContacts(w http.ResponseWriter, r *http.Request, patientID uuid.UUID) {
	actor, _ := utils.GetActor(r.Context())

	switch r.Method {
	case http.MethodGet:
		contacts, err := h.patientService.ListContacts(r.Context(), actor, patientID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, contacts)
	case http.MethodPost:
		var contact models.PatientContact
		if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.patientService.AddContact(r.Context(), actor, patientID, &contact); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, contact)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
