package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
)

// CaregiverService handles caregiver-related operations
type CaregiverService struct {
	resourceDeps
}

// NewCaregiverService creates a new caregiver service
func NewCaregiverService(repo *store.Repository, evaluator *policy.Evaluator, ledger *audit.Ledger) *CaregiverService {
	return &CaregiverService{resourceDeps{repo: repo, policy: evaluator, ledger: ledger}}
}

// CreateCaregiver creates a new caregiver profile
func (s *CaregiverService) CreateCaregiver(ctx context.Context, actor *models.User, caregiver *models.Caregiver) error {
	if _, err := s.authorize(ctx, actor, models.ActionCreate, models.ResourceTypeCaregiver, nil); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, caregiver, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, caregiver,
		describeOp("Created", models.ResourceTypeCaregiver, caregiver.ID), nil)
}

// GetCaregiver loads one caregiver profile visible to the actor
func (s *CaregiverService) GetCaregiver(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Caregiver, error) {
	var caregiver models.Caregiver
	if err := s.repo.Get(ctx, &caregiver, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeCaregiver, &caregiver); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeCaregiver, &id,
		describeOp("Accessed", models.ResourceTypeCaregiver, id))
	return &caregiver, nil
}

// ListCaregivers returns the caregiver profiles the actor's scope allows
func (s *CaregiverService) ListCaregivers(ctx context.Context, actor *models.User) ([]models.Caregiver, error) {
	decision, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeCaregiver, nil)
	if err != nil {
		return nil, err
	}
	var caregivers []models.Caregiver
	if err := s.repo.Find(ctx, &caregivers, store.ReadOptions{Scope: decision.Scope}); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeCaregiver, nil, "Listed caregivers")
	return caregivers, nil
}

// UpdateCaregiver applies the provided fields to a caregiver profile
func (s *CaregiverService) UpdateCaregiver(ctx context.Context, actor *models.User, id uuid.UUID, req *models.UpdateCaregiverRequest) (*models.Caregiver, error) {
	var caregiver models.Caregiver
	if err := s.repo.Get(ctx, &caregiver, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypeCaregiver, &caregiver); err != nil {
		return nil, err
	}

	// A caregiver's own-update grant covers contact details only;
	// employment terms and compensation are managed by office staff.
	if actor != nil && actor.Role == models.RoleCaregiver {
		if restricted := caregiverRestrictedFields(req); len(restricted) > 0 {
			s.recordFieldDenial(ctx, actor, models.ResourceTypeCaregiver, caregiver.ID, restricted)
			return nil, policy.ErrForbidden
		}
	}

	changed := applyCaregiverUpdate(&caregiver, req)
	if len(changed) == 0 {
		return &caregiver, nil
	}
	if err := s.repo.Save(ctx, &caregiver, actor); err != nil {
		return nil, err
	}
	if err := s.recordChange(ctx, actor, models.AuditActionUpdate, &caregiver,
		describeOp("Updated", models.ResourceTypeCaregiver, id), changed); err != nil {
		return &caregiver, err
	}
	return &caregiver, nil
}

// DeleteCaregiver soft-deletes a caregiver profile (administrator only)
func (s *CaregiverService) DeleteCaregiver(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, &models.Caregiver{BaseModel: models.BaseModel{ID: id}}, actor)
}

// RestoreCaregiver clears the soft-delete flag (administrator only)
func (s *CaregiverService) RestoreCaregiver(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.Restore(ctx, &models.Caregiver{BaseModel: models.BaseModel{ID: id}}, actor)
}

// AddCredential records a license or certification for a caregiver.
// Only office staff and administrators manage credentials.
func (s *CaregiverService) AddCredential(ctx context.Context, actor *models.User, caregiverID uuid.UUID, credential *models.Credential) error {
	if _, err := s.authorize(ctx, actor, models.ActionCreate, models.ResourceTypeCaregiver, nil); err != nil {
		return err
	}
	var caregiver models.Caregiver
	if err := s.repo.Get(ctx, &caregiver, caregiverID, store.ReadOptions{}); err != nil {
		return err
	}
	credential.CaregiverID = caregiverID
	if actor != nil {
		id := actor.ID
		credential.VerifiedByID = &id
	}
	if err := s.repo.Create(ctx, credential, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, &caregiver,
		describeOp("Added credential to", models.ResourceTypeCaregiver, caregiverID), nil)
}

// ListCredentials returns a caregiver's credentials if the actor may
// read the profile.
func (s *CaregiverService) ListCredentials(ctx context.Context, actor *models.User, caregiverID uuid.UUID) ([]models.Credential, error) {
	var caregiver models.Caregiver
	if err := s.repo.Get(ctx, &caregiver, caregiverID, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeCaregiver, &caregiver); err != nil {
		return nil, err
	}
	var credentials []models.Credential
	if err := s.repo.Find(ctx, &credentials, store.ReadOptions{}, "caregiver_id = ?", caregiverID); err != nil {
		return nil, err
	}
	return credentials, nil
}

// caregiverRestrictedFields lists the requested fields a caregiver may
// not change on their own profile.
func caregiverRestrictedFields(req *models.UpdateCaregiverRequest) []string {
	var fields []string
	if req.Status != nil {
		fields = append(fields, "status")
	}
	if req.HireDate != nil {
		fields = append(fields, "hire_date")
	}
	if req.EmploymentType != nil {
		fields = append(fields, "employment_type")
	}
	if req.HourlyRate != nil {
		fields = append(fields, "hourly_rate")
	}
	if req.MaxHoursPerWeek != nil {
		fields = append(fields, "max_hours_per_week")
	}
	return fields
}

func applyCaregiverUpdate(c *models.Caregiver, req *models.UpdateCaregiverRequest) []string {
	var changed []string
	if req.Status != nil && *req.Status != c.Status {
		c.Status = *req.Status
		changed = append(changed, "status")
	}
	if req.HireDate != nil {
		c.HireDate = req.HireDate
		changed = append(changed, "hire_date")
	}
	if req.EmploymentType != nil && *req.EmploymentType != c.EmploymentType {
		c.EmploymentType = *req.EmploymentType
		changed = append(changed, "employment_type")
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != c.PhoneNumber {
		c.PhoneNumber = *req.PhoneNumber
		changed = append(changed, "phone_number")
	}
	if req.HourlyRate != nil {
		c.HourlyRate = req.HourlyRate
		changed = append(changed, "hourly_rate")
	}
	if req.MaxHoursPerWeek != nil {
		c.MaxHoursPerWeek = req.MaxHoursPerWeek
		changed = append(changed, "max_hours_per_week")
	}
	return changed
}
