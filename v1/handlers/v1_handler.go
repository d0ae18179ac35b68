package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/auth"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/services"
	"github.com/treehousetherapy/curelia-health/v1/store"
	"github.com/treehousetherapy/curelia-health/v1/utils"
	"gorm.io/gorm"
)

// V1Handler handles all V1 API routes
type V1Handler struct {
	guard            *auth.Guard
	ledger           *audit.Ledger
	patientService   *services.PatientService
	clientService    *services.ClientService
	caregiverService *services.CaregiverService
	shiftService     *services.ShiftService
	timeLogService   *services.TimeLogService
	documentService  *services.DocumentService
}

// NewV1Handler wires the evaluator, repository and ledger into one
// service set over a single database handle.
func NewV1Handler(db *gorm.DB, guard *auth.Guard, ledger *audit.Ledger) *V1Handler {
	evaluator := policy.NewEvaluator(db, ledger)
	repo := store.NewRepository(db, ledger)

	return &V1Handler{
		guard:            guard,
		ledger:           ledger,
		patientService:   services.NewPatientService(repo, evaluator, ledger),
		clientService:    services.NewClientService(repo, evaluator, ledger),
		caregiverService: services.NewCaregiverService(repo, evaluator, ledger),
		shiftService:     services.NewShiftService(repo, evaluator, ledger),
		timeLogService:   services.NewTimeLogService(repo, evaluator, ledger),
		documentService:  services.NewDocumentService(repo, evaluator, ledger),
	}
}

// SetupV1Routes configures all V1 API routes
func (h *V1Handler) SetupV1Routes(mux *http.ServeMux) {
	mux.Handle("/api/v1/auth/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleAuth)))

	mux.Handle("/api/v1/patients", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePatients)))
	mux.Handle("/api/v1/patients/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handlePatients)))

	mux.Handle("/api/v1/clients", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleClients)))
	mux.Handle("/api/v1/clients/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleClients)))

	mux.Handle("/api/v1/caregivers", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCaregivers)))
	mux.Handle("/api/v1/caregivers/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleCaregivers)))

	mux.Handle("/api/v1/shifts", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleShifts)))
	mux.Handle("/api/v1/shifts/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleShifts)))
	mux.Handle("/api/v1/assignments", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleAssignments)))

	mux.Handle("/api/v1/time-logs", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleTimeLogs)))
	mux.Handle("/api/v1/time-logs/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleTimeLogs)))

	mux.Handle("/api/v1/documents", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleDocuments)))
	mux.Handle("/api/v1/documents/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleDocuments)))

	mux.Handle("/api/v1/audit-logs", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleAuditLogs)))
}

// pathParts splits the request path after a prefix into its segments.
func pathParts(r *http.Request, prefix string) []string {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// parseID parses a path segment as a resource id.
func parseID(w http.ResponseWriter, segment string) (uuid.UUID, bool) {
	id, err := uuid.Parse(segment)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid resource ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service-layer sentinel errors to HTTP status
// codes. Denial bodies are generic so responses never enumerate what
// exists or why access failed.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, policy.ErrForbidden), errors.Is(err, store.ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, audit.ErrQueryForbidden):
		utils.RespondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrAlreadyClockedOut):
		utils.RespondWithError(w, http.StatusConflict, "Time log already closed")
	case errors.Is(err, audit.ErrWrite):
		// The action itself committed; only the audit write failed.
		utils.RespondWithError(w, http.StatusInternalServerError, "Audit trail unavailable")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
