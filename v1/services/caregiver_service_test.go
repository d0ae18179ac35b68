package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
)

func TestCaregiverOwnUpdateLimitedToContactFields(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &CaregiverService{deps}
	ctx := context.Background()

	user := CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := CreateTestCaregiver(t, db, user.ID)

	phone := "+1-612-555-0142"
	updated, err := svc.UpdateCaregiver(ctx, user, caregiver.ID, &models.UpdateCaregiverRequest{
		PhoneNumber: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.PhoneNumber)

	entries := entriesFor(t, db, models.AuditActionUpdate, models.ResourceTypeCaregiver)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "phone_number")
}

func TestCaregiverCannotSetOwnCompensation(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &CaregiverService{deps}
	ctx := context.Background()

	user := CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := CreateTestCaregiver(t, db, user.ID)

	rate := 95.0
	_, err := svc.UpdateCaregiver(ctx, user, caregiver.ID, &models.UpdateCaregiverRequest{
		HourlyRate: &rate,
	})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	// The row is untouched and the attempt is on the ledger.
	var fresh models.Caregiver
	require.NoError(t, db.First(&fresh, "id = ?", caregiver.ID).Error)
	assert.Nil(t, fresh.HourlyRate)

	entries := entriesFor(t, db, models.AuditActionAccessDenied, models.ResourceTypeCaregiver)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "hourly_rate")
	assert.Contains(t, string(entries[0].Metadata), "role_insufficient")
}

func TestCaregiverCannotChangeOwnEmploymentTerms(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &CaregiverService{deps}
	ctx := context.Background()

	user := CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := CreateTestCaregiver(t, db, user.ID)

	status := models.CaregiverStatusOnLeave
	employment := "salaried"
	_, err := svc.UpdateCaregiver(ctx, user, caregiver.ID, &models.UpdateCaregiverRequest{
		Status:         &status,
		EmploymentType: &employment,
	})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	entries := entriesFor(t, db, models.AuditActionAccessDenied, models.ResourceTypeCaregiver)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "status")
	assert.Contains(t, string(entries[0].Metadata), "employment_type")
}

func TestStaffSetsCompensationFields(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &CaregiverService{deps}
	ctx := context.Background()

	staff := CreateTestUser(t, db, "staff@curelia.test", models.RoleStaff)
	user := CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := CreateTestCaregiver(t, db, user.ID)

	rate := 32.50
	hours := 40.0
	updated, err := svc.UpdateCaregiver(ctx, staff, caregiver.ID, &models.UpdateCaregiverRequest{
		HourlyRate:      &rate,
		MaxHoursPerWeek: &hours,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.HourlyRate)
	assert.InDelta(t, 32.50, *updated.HourlyRate, 0.001)

	entries := entriesFor(t, db, models.AuditActionUpdate, models.ResourceTypeCaregiver)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "hourly_rate")
	assert.Contains(t, string(entries[0].Metadata), "max_hours_per_week")
}
