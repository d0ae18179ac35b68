package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
)

func TestCaregiverCannotRescheduleOwnShift(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &ShiftService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	later := fx.shift.ScheduledStart.Add(2 * time.Hour)
	_, err := svc.UpdateShift(ctx, fx.caregiverUser, fx.shift.ID, &models.UpdateShiftRequest{
		ScheduledStart: &later,
	})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	var fresh models.Shift
	require.NoError(t, db.First(&fresh, "id = ?", fx.shift.ID).Error)
	assert.True(t, fresh.ScheduledStart.Equal(fx.shift.ScheduledStart))

	entries := entriesFor(t, db, models.AuditActionAccessDenied, models.ResourceTypeShift)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "scheduled_start")
	assert.Contains(t, string(entries[0].Metadata), "role_insufficient")
}

func TestCaregiverCannotFlipOwnShiftStatus(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &ShiftService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	status := models.ShiftStatusCompleted
	_, err := svc.UpdateShift(ctx, fx.caregiverUser, fx.shift.ID, &models.UpdateShiftRequest{
		Status: &status,
	})
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestCaregiverAnnotatesOwnShift(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &ShiftService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	notes := "Client prefers afternoon visits"
	updated, err := svc.UpdateShift(ctx, fx.caregiverUser, fx.shift.ID, &models.UpdateShiftRequest{
		Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	entries := entriesFor(t, db, models.AuditActionUpdate, models.ResourceTypeShift)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "notes")
}

func TestStaffReschedulesShift(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &ShiftService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	staff := CreateTestUser(t, db, "staff@curelia.test", models.RoleStaff)
	later := fx.shift.ScheduledStart.Add(3 * time.Hour)
	updated, err := svc.UpdateShift(ctx, staff, fx.shift.ID, &models.UpdateShiftRequest{
		ScheduledStart: &later,
	})
	require.NoError(t, err)
	assert.True(t, updated.ScheduledStart.Equal(later))
}
