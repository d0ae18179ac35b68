package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
)

// ClientService handles client-related operations
type ClientService struct {
	resourceDeps
}

// NewClientService creates a new client service
func NewClientService(repo *store.Repository, evaluator *policy.Evaluator, ledger *audit.Ledger) *ClientService {
	return &ClientService{resourceDeps{repo: repo, policy: evaluator, ledger: ledger}}
}

// CreateClient creates a new client record
func (s *ClientService) CreateClient(ctx context.Context, actor *models.User, client *models.Client) error {
	if _, err := s.authorize(ctx, actor, models.ActionCreate, models.ResourceTypeClient, nil); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, client, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, client,
		describeOp("Created", models.ResourceTypeClient, client.ID), nil)
}

// GetClient loads one client visible to the actor
func (s *ClientService) GetClient(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := s.repo.Get(ctx, &client, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeClient, &client); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeClient, &id,
		describeOp("Accessed", models.ResourceTypeClient, id))
	return &client, nil
}

// ListClients returns the clients the actor's scope allows
func (s *ClientService) ListClients(ctx context.Context, actor *models.User) ([]models.Client, error) {
	decision, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeClient, nil)
	if err != nil {
		return nil, err
	}
	var clients []models.Client
	if err := s.repo.Find(ctx, &clients, store.ReadOptions{Scope: decision.Scope}); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeClient, nil, "Listed clients")
	return clients, nil
}

// UpdateClient applies the provided fields to a client record
func (s *ClientService) UpdateClient(ctx context.Context, actor *models.User, id uuid.UUID, req *models.UpdateClientRequest) (*models.Client, error) {
	var client models.Client
	if err := s.repo.Get(ctx, &client, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypeClient, &client); err != nil {
		return nil, err
	}

	changed := applyClientUpdate(&client, req)
	if len(changed) == 0 {
		return &client, nil
	}
	if err := s.repo.Save(ctx, &client, actor); err != nil {
		return nil, err
	}
	if err := s.recordChange(ctx, actor, models.AuditActionUpdate, &client,
		describeOp("Updated", models.ResourceTypeClient, id), changed); err != nil {
		return &client, err
	}
	return &client, nil
}

// DeleteClient soft-deletes a client record (administrator only)
func (s *ClientService) DeleteClient(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, &models.Client{BaseModel: models.BaseModel{ID: id}}, actor)
}

// RestoreClient clears the soft-delete flag (administrator only)
func (s *ClientService) RestoreClient(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.Restore(ctx, &models.Client{BaseModel: models.BaseModel{ID: id}}, actor)
}

// CreateCarePlan attaches a care plan to a client. Authorization follows
// the owning client record.
func (s *ClientService) CreateCarePlan(ctx context.Context, actor *models.User, clientID uuid.UUID, plan *models.CarePlan) error {
	var client models.Client
	if err := s.repo.Get(ctx, &client, clientID, store.ReadOptions{}); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypeClient, &client); err != nil {
		return err
	}
	plan.ClientID = clientID
	if err := s.repo.Create(ctx, plan, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, plan,
		describeOp("Created", models.ResourceTypeCarePlan, plan.ID), nil)
}

// ListCarePlans returns the care plans of a client the actor may read.
func (s *ClientService) ListCarePlans(ctx context.Context, actor *models.User, clientID uuid.UUID) ([]models.CarePlan, error) {
	var client models.Client
	if err := s.repo.Get(ctx, &client, clientID, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypeClient, &client); err != nil {
		return nil, err
	}
	var plans []models.CarePlan
	if err := s.repo.Find(ctx, &plans, store.ReadOptions{}, "client_id = ?", clientID); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeCarePlan, nil,
		describeOp("Listed care plans for", models.ResourceTypeClient, clientID))
	return plans, nil
}

func applyClientUpdate(c *models.Client, req *models.UpdateClientRequest) []string {
	var changed []string
	if req.FirstName != nil && *req.FirstName != c.FirstName {
		c.FirstName = *req.FirstName
		changed = append(changed, "first_name")
	}
	if req.LastName != nil && *req.LastName != c.LastName {
		c.LastName = *req.LastName
		changed = append(changed, "last_name")
	}
	if req.DateOfBirth != nil {
		c.DateOfBirth = req.DateOfBirth
		changed = append(changed, "date_of_birth")
	}
	if req.PhoneNumber != nil && *req.PhoneNumber != c.PhoneNumber {
		c.PhoneNumber = *req.PhoneNumber
		changed = append(changed, "phone_number")
	}
	if req.Email != nil && *req.Email != c.Email {
		c.Email = *req.Email
		changed = append(changed, "email")
	}
	if req.AddressLine1 != nil && *req.AddressLine1 != c.AddressLine1 {
		c.AddressLine1 = *req.AddressLine1
		changed = append(changed, "address_line1")
	}
	if req.City != nil && *req.City != c.City {
		c.City = *req.City
		changed = append(changed, "city")
	}
	if req.State != nil && *req.State != c.State {
		c.State = *req.State
		changed = append(changed, "state")
	}
	if req.ZipCode != nil && *req.ZipCode != c.ZipCode {
		c.ZipCode = *req.ZipCode
		changed = append(changed, "zip_code")
	}
	if req.Latitude != nil {
		c.Latitude = req.Latitude
		changed = append(changed, "latitude")
	}
	if req.Longitude != nil {
		c.Longitude = req.Longitude
		changed = append(changed, "longitude")
	}
	if req.GeofenceRadiusMeters != nil {
		c.GeofenceRadiusMeters = req.GeofenceRadiusMeters
		changed = append(changed, "geofence_radius_meters")
	}
	if req.Status != nil && *req.Status != c.Status {
		c.Status = *req.Status
		changed = append(changed, "status")
	}
	if req.StartOfCare != nil {
		c.StartOfCare = req.StartOfCare
		changed = append(changed, "start_of_care")
	}
	if req.ServiceHoursPerWeek != nil {
		c.ServiceHoursPerWeek = req.ServiceHoursPerWeek
		changed = append(changed, "service_hours_per_week")
	}
	if req.EVVRequired != nil && *req.EVVRequired != c.EVVRequired {
		c.EVVRequired = *req.EVVRequired
		changed = append(changed, "evv_required")
	}
	if req.MedicaidID != nil && *req.MedicaidID != c.MedicaidID {
		c.MedicaidID = *req.MedicaidID
		changed = append(changed, "medicaid_id")
	}
	if req.Notes != nil && *req.Notes != c.Notes {
		c.Notes = *req.Notes
		changed = append(changed, "notes")
	}
	return changed
}
