package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/metrics"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/utils"
	"gorm.io/gorm"
)

// Entry is what callers hand to the ledger. Request context (IP, user
// agent, correlation id) is filled in from the context, not by callers.
type Entry struct {
	ActorID      *uuid.UUID
	Action       models.AuditAction
	ResourceType string
	ResourceID   *uuid.UUID
	Description  string
	Metadata     map[string]interface{}
}

// Filters narrows a ledger query. Nil fields are ignored.
type Filters struct {
	ActorID      *uuid.UUID
	Action       *models.AuditAction
	ResourceType *string
	ResourceID   *uuid.UUID
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// Ledger is the append-only audit log. Record and Query are its entire
// public contract; nothing updates or deletes entries.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a ledger over the given database
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Record validates and writes one entry synchronously, attaching the
// request metadata from ctx. A transient storage failure is retried once;
// a second failure is counted, logged, and returned wrapped in ErrWrite.
// The error is never swallowed here and must never be swallowed by
// callers either; it is however a secondary error that does not undo the
// action it was recording.
func (l *Ledger) Record(ctx context.Context, e Entry) (uuid.UUID, error) {
	if !e.Action.IsValid() {
		return uuid.Nil, fmt.Errorf("%w: unknown action %q", ErrInvalidEntry, e.Action)
	}
	if e.Description == "" {
		return uuid.Nil, fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}

	meta := utils.GetRequestMeta(ctx)
	row := &models.AuditLog{
		UserID:       e.ActorID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Description:  e.Description,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
	}

	if e.Metadata != nil {
		data, err := json.Marshal(e.Metadata)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: metadata not serializable: %v", ErrInvalidEntry, err)
		}
		row.Metadata = data
	}

	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		// One synchronous retry, then escalate. No background queue:
		// the write either lands within the request or the caller
		// hears about it.
		row.ID = uuid.Nil
		if retryErr := l.db.WithContext(ctx).Create(row).Error; retryErr != nil {
			metrics.AuditWritesTotal.WithLabelValues("failure").Inc()
			metrics.AuditWriteFailuresTotal.Inc()
			slog.Error("Audit write failed after retry",
				"action", e.Action, "resourceType", e.ResourceType, "requestId", meta.RequestID, "error", retryErr)
			return uuid.Nil, fmt.Errorf("%w: %v", ErrWrite, retryErr)
		}
	}

	metrics.AuditWritesTotal.WithLabelValues("success").Inc()
	return row.ID, nil
}

// Query returns entries matching the filters, newest first. Only
// administrators may query the ledger broadly; any other actor is
// restricted to entries where they are the acting user, and asking for
// another actor's entries is rejected outright.
func (l *Ledger) Query(ctx context.Context, actor *models.User, f Filters) ([]models.AuditLog, error) {
	if actor == nil {
		return nil, ErrQueryForbidden
	}
	if !actor.IsAdmin() {
		if f.ActorID != nil && *f.ActorID != actor.ID {
			return nil, ErrQueryForbidden
		}
		id := actor.ID
		f.ActorID = &id
	}

	query := l.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.ActorID != nil {
		query = query.Where("user_id = ?", *f.ActorID)
	}
	if f.Action != nil {
		query = query.Where("action = ?", *f.Action)
	}
	if f.ResourceType != nil {
		query = query.Where("resource_type = ?", *f.ResourceType)
	}
	if f.ResourceID != nil {
		query = query.Where("resource_id = ?", *f.ResourceID)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	return logs, nil
}
