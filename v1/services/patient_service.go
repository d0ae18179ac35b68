package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
)

// PatientService handles patient-related operations
type PatientService struct {
	resourceDeps
}

// NewPatientService creates a new patient service
func NewPatientService(repo *store.Repository, evaluator *policy.Evaluator, ledger *audit.Ledger) *PatientService {
	return &PatientService{resourceDeps{repo: repo, policy: evaluator, ledger: ledger}}
}

// CreatePatient creates a new patient record
func (s *PatientService) CreatePatient(ctx context.Context, actor *models.User, patient *models.Patient) error {
	if _, err := s.authorize(ctx, actor, models.ActionCreate, models.ResourceTypePatient, nil); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, patient, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, patient,
		describeOp("Created", models.ResourceTypePatient, patient.ID), nil)
}

// GetPatient loads one patient visible to the actor
func (s *PatientService) GetPatient(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	if err := s.repo.Get(ctx, &patient, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypePatient, &patient); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypePatient, &id,
		describeOp("Accessed", models.ResourceTypePatient, id))
	return &patient, nil
}

// ListPatients returns the patients the actor's scope allows
func (s *PatientService) ListPatients(ctx context.Context, actor *models.User) ([]models.Patient, error) {
	decision, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypePatient, nil)
	if err != nil {
		return nil, err
	}
	var patients []models.Patient
	if err := s.repo.Find(ctx, &patients, store.ReadOptions{Scope: decision.Scope}); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypePatient, nil, "Listed patients")
	return patients, nil
}

// UpdatePatient applies the provided fields to a patient record
func (s *PatientService) UpdatePatient(ctx context.Context, actor *models.User, id uuid.UUID, req *models.UpdatePatientRequest) (*models.Patient, error) {
	var patient models.Patient
	if err := s.repo.Get(ctx, &patient, id, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypePatient, &patient); err != nil {
		return nil, err
	}

	changed := applyPatientUpdate(&patient, req)
	if len(changed) == 0 {
		return &patient, nil
	}
	if err := s.repo.Save(ctx, &patient, actor); err != nil {
		return nil, err
	}
	if err := s.recordChange(ctx, actor, models.AuditActionUpdate, &patient,
		describeOp("Updated", models.ResourceTypePatient, id), changed); err != nil {
		return &patient, err
	}
	return &patient, nil
}

// DeletePatient soft-deletes a patient record (administrator only)
func (s *PatientService) DeletePatient(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, &models.Patient{BaseModel: models.BaseModel{ID: id}}, actor)
}

// RestorePatient clears the soft-delete flag (administrator only)
func (s *PatientService) RestorePatient(ctx context.Context, actor *models.User, id uuid.UUID) error {
	return s.repo.Restore(ctx, &models.Patient{BaseModel: models.BaseModel{ID: id}}, actor)
}

// AddContact attaches a contact to a patient. Authorization follows the
// owning patient record.
func (s *PatientService) AddContact(ctx context.Context, actor *models.User, patientID uuid.UUID, contact *models.PatientContact) error {
	var patient models.Patient
	if err := s.repo.Get(ctx, &patient, patientID, store.ReadOptions{}); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, actor, models.ActionUpdate, models.ResourceTypePatient, &patient); err != nil {
		return err
	}
	contact.PatientID = patientID
	if err := s.repo.Create(ctx, contact, actor); err != nil {
		return err
	}
	return s.recordChange(ctx, actor, models.AuditActionCreate, contact,
		describeOp("Created", models.ResourceTypeContact, contact.ID), nil)
}

// ListContacts returns the contacts of a patient the actor may read.
func (s *PatientService) ListContacts(ctx context.Context, actor *models.User, patientID uuid.UUID) ([]models.PatientContact, error) {
	var patient models.Patient
	if err := s.repo.Get(ctx, &patient, patientID, store.ReadOptions{}); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, models.ActionRead, models.ResourceTypePatient, &patient); err != nil {
		return nil, err
	}
	var contacts []models.PatientContact
	if err := s.repo.Find(ctx, &contacts, store.ReadOptions{}, "patient_id = ?", patientID); err != nil {
		return nil, err
	}
	s.recordAccess(ctx, actor, models.ResourceTypeContact, nil,
		describeOp("Listed contacts for", models.ResourceTypePatient, patientID))
	return contacts, nil
}

func applyPatientUpdate(p *models.Patient, req *models.UpdatePatientRequest) []string {
	var changed []string
	if req.FirstName != nil && *req.FirstName != p.FirstName {
		p.FirstName = *req.FirstName
		changed = append(changed, "first_name")
	}
	if req.LastName != nil && *req.LastName != p.LastName {
		p.LastName = *req.LastName
		changed = append(changed, "last_name")
	}
	if req.DateOfBirth != nil {
		p.DateOfBirth = req.DateOfBirth
		changed = append(changed, "date_of_birth")
	}
	if req.Gender != nil && *req.Gender != p.Gender {
		p.Gender = *req.Gender
		changed = append(changed, "gender")
	}
	if req.Status != nil && *req.Status != p.Status {
		p.Status = *req.Status
		changed = append(changed, "status")
	}
	if req.PrimaryDiagnosis != nil && *req.PrimaryDiagnosis != p.PrimaryDiagnosis {
		p.PrimaryDiagnosis = *req.PrimaryDiagnosis
		changed = append(changed, "primary_diagnosis")
	}
	if req.Allergies != nil && *req.Allergies != p.Allergies {
		p.Allergies = *req.Allergies
		changed = append(changed, "allergies")
	}
	if req.Medications != nil && *req.Medications != p.Medications {
		p.Medications = *req.Medications
		changed = append(changed, "medications")
	}
	if req.PrimaryInsurance != nil && *req.PrimaryInsurance != p.PrimaryInsurance {
		p.PrimaryInsurance = *req.PrimaryInsurance
		changed = append(changed, "primary_insurance")
	}
	if req.InsuranceID != nil && *req.InsuranceID != p.InsuranceID {
		p.InsuranceID = *req.InsuranceID
		changed = append(changed, "insurance_id")
	}
	return changed
}
