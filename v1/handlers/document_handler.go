package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// handleDocuments handles document metadata routes
func (h *V1Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	parts := pathParts(r, "/api/v1/documents")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			docs, err := h.documentService.ListDocuments(r.Context(), actor)
			if err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusOK, docs)
		case http.MethodPost:
			var doc models.Document
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
				return
			}
			if err := h.documentService.CreateDocument(r.Context(), actor, &doc); err != nil {
				respondServiceError(w, err)
				return
			}
			utils.RespondWithJSON(w, http.StatusCreated, doc)
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
		if err := h.documentService.RestoreDocument(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "restored"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := h.documentService.GetDocument(r.Context(), actor, id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, doc)
	case http.MethodPatch, http.MethodPut:
		var req models.UpdateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		doc, err := h.documentService.UpdateDocument(r.Context(), actor, id, &req)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := h.documentService.DeleteDocument(r.Context(), actor, id); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
