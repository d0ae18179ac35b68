package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
)

// ErrAlreadyClockedOut is returned when closing a time log twice.
var ErrAlreadyClockedOut = errors.New("time log already clocked out")

// TimeLogService handles EVV time log operations. GPS coordinates are
// recorded verbatim; geofence verification happens downstream.
type TimeLogService struct {
	resourceDeps
}

// NewTimeLogService creates a new time log service
func NewTimeLogService(repo *store.Repository, evaluator *policy.Evaluator, ledger *audit.Ledger) *TimeLogService {
	return &TimeLogService{resourceDeps{repo: repo, policy: evaluator, ledger: ledger}}
}

// ClockIn opens a time log against a scheduled shift. The caregiver on
// the shift may clock themselves in; office staff and administrators may
// clock in on a caregiver's behalf.
func (s *TimeLogService) ClockIn(ctx context.Context, actor *models.User, req *models.ClockInRequest) (*models.TimeLog, error) {
	var shift models.Shift
	if err := s.repo.Get(ctx, &shift, req.ShiftID, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypeShift, &shift); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	shiftID := shift.ID
	log := models.TimeLog{
		CaregiverID: shift.CaregiverID,
		ClientID:    shift.ClientID,
		ShiftID:     &shiftID,
		ClockInAt:   &now,
		ClockInLat:  req.Latitude,
		ClockInLng:  req.Longitude,
		Status:      models.TimeLogStatusPending,
	}
	if err := s.repo.Create(ctx, &log, actor); err != nil {
		return nil, err
	}

	shift.Status = models.ShiftStatusInProgress
	if err := s.repo.Save(ctx, &shift, actor); err != nil {
		return nil, err
	}

	if err := s.recordEVV(ctx, actor, models.AuditActionClockIn, &log,
		describeOp("Clock-in for", models.ResourceTypeShift, shift.ID), nil); err != nil {
		return &log, err
	}
	return &log, nil
}

// ClockOut closes an open time log.
func (s *TimeLogService) ClockOut(ctx context.Context, actor *models.User, req *models.ClockOutRequest) (*models.TimeLog, error) {
	var log models.TimeLog
	if err := s.repo.Get(ctx, &log, req.TimeLogID, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypeTimeLog, &log); err != nil {
		return nil, err
	}
	if log.ClockOutAt != nil {
		return nil, ErrAlreadyClockedOut
	}

	now := time.Now().UTC()
	log.ClockOutAt = &now
	log.ClockOutLat = req.Latitude
	log.ClockOutLng = req.Longitude
	if err := s.repo.Save(ctx, &log, actor); err != nil {
		return nil, err
	}

	if log.ShiftID != nil {
		var shift models.Shift
		if err := s.repo.Get(ctx, &shift, *log.ShiftID, store.ReadOptions{}); err == nil {
			shift.Status = models.ShiftStatusCompleted
			if err := s.repo.Save(ctx, &shift, actor); err != nil {
				return nil, err
			}
		}
	}

	if err := s.recordEVV(ctx, actor, models.AuditActionClockOut, &log,
		describeOp("Clock-out for", models.ResourceTypeTimeLog, log.ID), nil); err != nil {
		return &log, err
	}
	return &log, nil
}

// Override adjusts a time log's recorded times. Restricted to office
// staff and administrators; the caregiver's own update grant does not
// reach overrides.
func (s *TimeLogService) Override(ctx context.Context, actor *models.User, req *models.OverrideTimeLogRequest) (*models.TimeLog, error) {
	if actor == nil || (actor.Role != models.RoleAdmin && actor.Role != models.RoleStaff) {
		entry := audit.Entry{
			Action:       models.AuditActionAccessDenied,
			ResourceType: models.ResourceTypeTimeLog,
			Description:  "Denied evv_override on TimeLog",
			Metadata:     map[string]interface{}{"attempted_action": "evv_override", "reason": string(policy.ReasonRoleInsufficient)},
		}
		logID := req.TimeLogID
		entry.ResourceID = &logID
		if actor != nil {
			id := actor.ID
			entry.ActorID = &id
		}
		if _, err := s.ledger.Record(ctx, entry); err != nil {
			slog.Error("Failed to record access denial", "resourceType", models.ResourceTypeTimeLog, "error", err)
		}
		return nil, policy.ErrForbidden
	}

	var log models.TimeLog
	if err := s.repo.Get(ctx, &log, req.TimeLogID, store.ReadOptions{}); err != nil {
		return nil, err
	}

	var changed []string
	if req.ClockInAt != nil {
		log.ClockInAt = req.ClockInAt
		changed = append(changed, "clock_in_at")
	}
	if req.ClockOutAt != nil {
		log.ClockOutAt = req.ClockOutAt
		changed = append(changed, "clock_out_at")
	}
	log.Status = models.TimeLogStatusOverridden
	actorID := actor.ID
	log.AdjustedByID = &actorID
	if err := s.repo.Save(ctx, &log, actor); err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{"reason": req.Reason}
	if err := s.recordEVV(ctx, actor, models.AuditActionEVVOverride, &log,
		describeOp("Override of", models.ResourceTypeTimeLog, log.ID), metadataWithFields(metadata, changed)); err != nil {
		return &log, err
	}
	return &log, nil
}

// GetTimeLog loads one time log visible to the actor
func (s *TimeLogService) GetTimeLog(ctx context.Context, actor *models.User, id uuid.UUID) (*models.TimeLog, error) {
	var log models.TimeLog
	if err := s.repo.Get(ctx, &log, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeTimeLog, &log); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeTimeLog, &id,
		describeOp("Accessed", models.ResourceTypeTimeLog, id))
	return &log, nil
}

// ListTimeLogs returns the time logs the actor's scope allows
func (s *TimeLogService) ListTimeLogs(ctx context.Context, actor *models.User) ([]models.TimeLog, error) {
	decision, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeTimeLog, nil)
	if err != nil {
		return nil, err
	}
	var logs []models.TimeLog
	if err := s.repo.Find(ctx, &logs, store.ReadOptions{Scope: decision.Scope}); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeTimeLog, nil, "Listed time logs")
	return logs, nil
}

// DeleteTimeLog soft-deletes a time log (administrator only)
func (s *TimeLogService) DeleteTimeLog(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, &models.TimeLog{BaseModel: models.BaseModel{ID: id}}, actor)
}

// RestoreTimeLog clears the soft-delete flag (administrator only)
func (s *TimeLogService) RestoreTimeLog(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.Restore(ctx, &models.TimeLog{BaseModel: models.BaseModel{ID: id}}, actor)
}

// recordEVV writes an EVV ledger entry with optional metadata.
func (s *TimeLogService) recordEVV(ctx context.Context, actor *models.User, action models.AuditAction, log *models.TimeLog, description string, metadata map[string]interface{}) error {
	entry := audit.Entry{
		Action:       action,
		ResourceType: models.ResourceTypeTimeLog,
		Description:  description,
		Metadata:     metadata,
	}
	id := log.ID
	entry.ResourceID = &id
	if actor != nil {
		aid := actor.ID
		entry.ActorID = &aid
	}
	_, err := s.ledger.Record(ctx, entry)
	return err
}

func metadataWithFields(metadata map[string]interface{}, changed []string) map[string]interface{} {
	if len(changed) > 0 {
		metadata["changed_fields"] = changed
	}
	return metadata
}
