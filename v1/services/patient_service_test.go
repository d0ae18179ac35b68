package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/store"
	"gorm.io/gorm"
)

func newServiceDeps(t *testing.T) (*gorm.DB, resourceDeps) {
	t.Helper()
	db := SetupSQLiteTestDB(t)
	ledger := audit.NewLedger(db)
	return db, resourceDeps{
		repo:   store.NewRepository(db, ledger),
		policy: policy.NewEvaluator(db, ledger),
		ledger: ledger,
	}
}

func createTestPatient(t *testing.T, db *gorm.DB, firstName string) *models.Patient {
	t.Helper()
	patient := &models.Patient{
		MedicalRecordNumber: "MRN-" + firstName,
		FirstName:           firstName,
		LastName:            "Test",
		Status:              models.PatientStatusActive,
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

func entriesFor(t *testing.T, db *gorm.DB, action models.AuditAction, resourceType string) []models.AuditLog {
	t.Helper()
	var entries []models.AuditLog
	require.NoError(t, db.Where("action = ? AND resource_type = ?", action, resourceType).
		Order("created_at ASC").Find(&entries).Error)
	return entries
}

func TestGetPatientAuditsTheAccess(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &PatientService{deps}
	ctx := context.Background()

	staff := CreateTestUser(t, db, "staff@curelia.test", models.RoleStaff)
	patient := createTestPatient(t, db, "Alma")

	got, err := svc.GetPatient(ctx, staff, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alma", got.FirstName)

	entries := entriesFor(t, db, models.AuditActionAccess, models.ResourceTypePatient)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, staff.ID, *entries[0].UserID)
	require.NotNil(t, entries[0].ResourceID)
	assert.Equal(t, patient.ID, *entries[0].ResourceID)
}

func TestUpdatePatientRecordsFieldNamesOnly(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &PatientService{deps}
	ctx := context.Background()

	staff := CreateTestUser(t, db, "staff@curelia.test", models.RoleStaff)
	patient := createTestPatient(t, db, "Alma")

	diagnosis := "Type 2 diabetes"
	lastName := "Reyes"
	updated, err := svc.UpdatePatient(ctx, staff, patient.ID, &models.UpdatePatientRequest{
		PrimaryDiagnosis: &diagnosis,
		LastName:         &lastName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Reyes", updated.LastName)

	entries := entriesFor(t, db, models.AuditActionUpdate, models.ResourceTypePatient)
	require.Len(t, entries, 1)

	var metadata map[string]interface{}
	require.NoError(t, json.Unmarshal(entries[0].Metadata, &metadata))
	fields, ok := metadata["changed_fields"].([]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"last_name", "primary_diagnosis"}, fields)

	// Field names only: the new values never reach the ledger.
	assert.NotContains(t, string(entries[0].Metadata), "Reyes")
	assert.NotContains(t, string(entries[0].Metadata), "diabetes")
	assert.NotContains(t, entries[0].Description, "Reyes")
}

func TestUpdatePatientWithNoChangesWritesNoEntry(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &PatientService{deps}
	ctx := context.Background()

	staff := CreateTestUser(t, db, "staff@curelia.test", models.RoleStaff)
	patient := createTestPatient(t, db, "Alma")

	same := patient.FirstName
	_, err := svc.UpdatePatient(ctx, staff, patient.ID, &models.UpdatePatientRequest{FirstName: &same})
	require.NoError(t, err)

	entries := entriesFor(t, db, models.AuditActionUpdate, models.ResourceTypePatient)
	assert.Empty(t, entries)
}

func TestCaregiverCannotCreatePatients(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &PatientService{deps}
	ctx := context.Background()

	caregiverUser := CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)

	err := svc.CreatePatient(ctx, caregiverUser, &models.Patient{
		MedicalRecordNumber: "MRN-X",
		FirstName:           "New",
		LastName:            "Patient",
	})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	entries := entriesFor(t, db, models.AuditActionAccessDenied, models.ResourceTypePatient)
	require.Len(t, entries, 1)
}

func TestDeletePatientHidesItFromReads(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &PatientService{deps}
	ctx := context.Background()

	admin := CreateTestUser(t, db, "admin@curelia.test", models.RoleAdmin)
	patient := createTestPatient(t, db, "Alma")

	require.NoError(t, svc.DeletePatient(ctx, admin, patient.ID))

	_, err := svc.GetPatient(ctx, admin, patient.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.RestorePatient(ctx, admin, patient.ID))
	restored, err := svc.GetPatient(ctx, admin, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, restored.ID)
}

func TestPatientContactsFollowTheOwningRecord(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &PatientService{deps}
	ctx := context.Background()

	staff := CreateTestUser(t, db, "staff@curelia.test", models.RoleStaff)
	patient := createTestPatient(t, db, "Alma")

	require.NoError(t, svc.AddContact(ctx, staff, patient.ID, &models.PatientContact{
		Name:         "Ben Reyes",
		Relationship: "son",
		IsEmergency:  true,
	}))

	contacts, err := svc.ListContacts(ctx, staff, patient.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, patient.ID, contacts[0].PatientID)

	// A caregiver with no assignment to the patient gets nothing.
	caregiverUser := CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	CreateTestCaregiver(t, db, caregiverUser.ID)
	_, err = svc.ListContacts(ctx, caregiverUser, patient.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)
}
