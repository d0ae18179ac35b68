package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// handleAuditLogs serves the ledger query endpoint. Administrators may
// query broadly; every other role is scoped to their own entries by the
// ledger itself.
func (h *V1Handler) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActor(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filters, err := parseAuditFilters(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, queryErr := h.ledger.Query(r.Context(), actor, filters)
	if queryErr != nil {
		respondServiceError(w, queryErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, logs)
}

func parseAuditFilters(r *http.Request) (audit.Filters, error) {
	var f audit.Filters
	q := r.URL.Query()

	if v := q.Get("actorId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errInvalidFilter("actorId")
		}
		f.ActorID = &id
	}
	if v := q.Get("resourceId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errInvalidFilter("resourceId")
		}
		f.ResourceID = &id
	}
	if v := q.Get("resourceType"); v != "" {
		f.ResourceType = &v
	}
	if v := q.Get("action"); v != "" {
		action := models.AuditAction(v)
		f.Action = &action
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errInvalidFilter("from")
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errInvalidFilter("to")
		}
		f.To = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errInvalidFilter("limit")
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errInvalidFilter("offset")
		}
		f.Offset = n
	}
	return f, nil
}

type filterError string

func errInvalidFilter(name string) filterError { return filterError("Invalid filter: " + name) }

func (e filterError) Error() string { return string(e) }
