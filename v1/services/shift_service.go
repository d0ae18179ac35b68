package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
)

// ShiftService handles shift scheduling operations
type ShiftService struct {
	resourceDeps
}

// NewShiftService creates a new shift service
func NewShiftService(repo *store.Repository, evaluator *policy.Evaluator, ledger *audit.Ledger) *ShiftService {
	return &ShiftService{resourceDeps{repo: repo, policy: evaluator, ledger: ledger}}
}

// CreateShift schedules a caregiver visit for a client
func (s *ShiftService) CreateShift(ctx context.Context, actor *models.User, shift *models.Shift) error {
	if _, err := s.authorize(ctx, actor, models.ActionCreate, models.ResourceTypeShift, nil); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, shift, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, shift,
		describeOp("Created", models.ResourceTypeShift, shift.ID), nil)
}

// GetShift loads one shift visible to the actor
func (s *ShiftService) GetShift(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	if err := s.repo.Get(ctx, &shift, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeShift, &shift); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeShift, &id,
		describeOp("Accessed", models.ResourceTypeShift, id))
	return &shift, nil
}

// ListShifts returns the shifts the actor's scope allows
func (s *ShiftService) ListShifts(ctx context.Context, actor *models.User) ([]models.Shift, error) {
	decision, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeShift, nil)
	if err != nil {
		return nil, err
	}
	var shifts []models.Shift
	if err := s.repo.Find(ctx, &shifts, store.ReadOptions{Scope: decision.Scope}); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeShift, nil, "Listed shifts")
	return shifts, nil
}

// UpdateShift applies the provided fields to a shift
func (s *ShiftService) UpdateShift(ctx context.Context, actor *models.User, id uuid.UUID, req *models.UpdateShiftRequest) (*models.Shift, error) {
	var shift models.Shift
	if err := s.repo.Get(ctx, &shift, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypeShift, &shift); err != nil {
		return nil, err
	}

	// A caregiver may annotate their own shift but not reschedule it;
	// schedule and status changes belong to office staff.
	if actor != nil && actor.Role == models.RoleCaregiver {
		if restricted := shiftRestrictedFields(req); len(restricted) > 0 {
			s.recordFieldDenial(ctx, actor, models.ResourceTypeShift, shift.ID, restricted)
			return nil, policy.ErrForbidden
		}
	}

	changed := applyShiftUpdate(&shift, req)
	if len(changed) == 0 {
		return &shift, nil
	}
	if err := s.repo.Save(ctx, &shift, actor); err != nil {
		return nil, err
	}
	if err := s.recordChange(ctx, actor, models.AuditActionUpdate, &shift,
		describeOp("Updated", models.ResourceTypeShift, id), changed); err != nil {
		return &shift, err
	}
	return &shift, nil
}

// DeleteShift soft-deletes a shift (administrator only)
func (s *ShiftService) DeleteShift(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, &models.Shift{BaseModel: models.BaseModel{ID: id}}, actor)
}

// RestoreShift clears the soft-delete flag (administrator only)
func (s *ShiftService) RestoreShift(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.Restore(ctx, &models.Shift{BaseModel: models.BaseModel{ID: id}}, actor)
}

// AssignCaregiver creates a standing caregiver-to-client assignment, the
// relationship row the policy evaluator's assigned scope checks.
func (s *ShiftService) AssignCaregiver(ctx context.Context, actor *models.User, assignment *models.CareAssignment) error {
	if _, err := s.authorize(ctx, actor, models.ActionCreate, models.ResourceTypeShift, nil); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, assignment, actor); err != nil {
		return err
	}
	clientID := assignment.ClientID
	entry := audit.Entry{
		Action:       models.AuditActionCreate,
		ResourceType: models.ResourceTypeClient,
		ResourceID:   &clientID,
		Description:  describeOp("Assigned caregiver to", models.ResourceTypeClient, clientID),
		Metadata: map[string]interface{}{
			"caregiver_id": assignment.CaregiverID.String(),
		},
	}
	if actor != nil {
		id := actor.ID
		entry.ActorID = &id
	}
	_, err := s.ledger.Record(ctx, entry)
	return err
}

// shiftRestrictedFields lists the requested fields a caregiver may not
// change on their own shift.
func shiftRestrictedFields(req *models.UpdateShiftRequest) []string {
	var fields []string
	if req.ScheduledStart != nil {
		fields = append(fields, "scheduled_start")
	}
	if req.ScheduledEnd != nil {
		fields = append(fields, "scheduled_end")
	}
	if req.Status != nil {
		fields = append(fields, "status")
	}
	if req.ServiceType != nil {
		fields = append(fields, "service_type")
	}
	return fields
}

func applyShiftUpdate(sh *models.Shift, req *models.UpdateShiftRequest) []string {
	var changed []string
	if req.ScheduledStart != nil && !req.ScheduledStart.Equal(sh.ScheduledStart) {
		sh.ScheduledStart = *req.ScheduledStart
		changed = append(changed, "scheduled_start")
	}
	if req.ScheduledEnd != nil && !req.ScheduledEnd.Equal(sh.ScheduledEnd) {
		sh.ScheduledEnd = *req.ScheduledEnd
		changed = append(changed, "scheduled_end")
	}
	if req.Status != nil && *req.Status != sh.Status {
		sh.Status = *req.Status
		changed = append(changed, "status")
	}
	if req.ServiceType != nil && *req.ServiceType != sh.ServiceType {
		sh.ServiceType = *req.ServiceType
		changed = append(changed, "service_type")
	}
	if req.Notes != nil && *req.Notes != sh.Notes {
		sh.Notes = *req.Notes
		changed = append(changed, "notes")
	}
	return changed
}
