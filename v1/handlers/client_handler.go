package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// handleClients handles client-related routes
func (h *V1Handler) handleClients(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	parts := pathParts(r, "/api/v1/clients")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			clients, err := h.clientService.ListClients(r.Context(), actor)
			if err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, clients)
		case http.MethodPost:
			var client models.Client
			if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if err := h.clientService.CreateClient(r.Context(), actor, &client); err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusCreated, client)
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
		case "care-plans":
			h.handleCarePlans(w, r, id)
		case "restore":
			if r.Method != http.MethodPost {
				utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			if err := h.clientService.RestoreClient(r.Context(), actor, id); err != nil {
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
		client, err := h.clientService.GetClient(r.Context(), actor, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, client)
	case http.MethodPatch, http.MethodPut:
		var req models.UpdateClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		client, err := h.clientService.UpdateClient(r.Context(), actor, id, &req)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, client)
	case http.MethodDelete:
		if err := h.clientService.DeleteClient(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *V1Handler) handleCarePlans(w http.ResponseWriter, r *http.Request, clientID uuid.UUID) {
	actor, _ := utils.GetActor(r.Context())

	switch r.Method {
	case http.MethodGet:
		plans, err := h.clientService.ListCarePlans(r.Context(), actor, clientID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, plans)
	case http.MethodPost:
		var plan models.CarePlan
		if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.clientService.CreateCarePlan(r.Context(), actor, clientID, &plan); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, plan)
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
