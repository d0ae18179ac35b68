package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"gorm.io/gorm"
)

type evvFixture struct {
	caregiverUser *models.User
	caregiver     *models.Caregiver
	client        *models.Client
	shift         *models.Shift
}

func newEVVFixture(t *testing.T, db *gorm.DB) evvFixture {
	t.Helper()
	user := CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := CreateTestCaregiver(t, db, user.ID)
	client := CreateTestClient(t, db, "Alma")

	start := time.Now().UTC().Add(-time.Hour)
	shift := &models.Shift{
		CaregiverID:    caregiver.ID,
		ClientID:       client.ID,
		ScheduledStart: start,
		ScheduledEnd:   start.Add(4 * time.Hour),
		Status:         models.ShiftStatusScheduled,
	}
	require.NoError(t, db.Create(shift).Error)

	return evvFixture{caregiverUser: user, caregiver: caregiver, client: client, shift: shift}
}

func ptr[T any](v T) *T { return &v }

func TestClockInOpensLogAndStartsShift(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &TimeLogService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	log, err := svc.ClockIn(ctx, fx.caregiverUser, &models.ClockInRequest{
		ShiftID:   fx.shift.ID,
		Latitude:  ptr(44.9778),
		Longitude: ptr(-93.2650),
	})
	require.NoError(t, err)

	assert.Equal(t, fx.caregiver.ID, log.CaregiverID)
	assert.Equal(t, models.TimeLogStatusPending, log.Status)
	require.NotNil(t, log.ClockInAt)
	require.NotNil(t, log.ClockInLat)
	assert.InDelta(t, 44.9778, *log.ClockInLat, 0.0001)

	var shift models.Shift
	require.NoError(t, db.First(&shift, "id = ?", fx.shift.ID).Error)
	assert.Equal(t, models.ShiftStatusInProgress, shift.Status)

	entries := entriesFor(t, db, models.AuditActionClockIn, models.ResourceTypeTimeLog)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ResourceID)
	assert.Equal(t, log.ID, *entries[0].ResourceID)
}

func TestClockInDeniedForUnrelatedCaregiver(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &TimeLogService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	otherUser := CreateTestUser(t, db, "other@curelia.test", models.RoleCaregiver)
	CreateTestCaregiver(t, db, otherUser.ID)

	_, err := svc.ClockIn(ctx, otherUser, &models.ClockInRequest{ShiftID: fx.shift.ID})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	entries := entriesFor(t, db, models.AuditActionAccessDenied, models.ResourceTypeShift)
	require.Len(t, entries, 1)
}

func TestClockOutClosesLogAndCompletesShift(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &TimeLogService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	log, err := svc.ClockIn(ctx, fx.caregiverUser, &models.ClockInRequest{ShiftID: fx.shift.ID})
	require.NoError(t, err)

	closed, err := svc.ClockOut(ctx, fx.caregiverUser, &models.ClockOutRequest{
		TimeLogID: log.ID,
		Latitude:  ptr(44.9780),
		Longitude: ptr(-93.2652),
	})
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOutAt)
	require.NotNil(t, closed.ClockOutLat)

	var shift models.Shift
	require.NoError(t, db.First(&shift, "id = ?", fx.shift.ID).Error)
	assert.Equal(t, models.ShiftStatusCompleted, shift.Status)

	entries := entriesFor(t, db, models.AuditActionClockOut, models.ResourceTypeTimeLog)
	require.Len(t, entries, 1)
}

func TestDoubleClockOutIsRejected(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &TimeLogService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	log, err := svc.ClockIn(ctx, fx.caregiverUser, &models.ClockInRequest{ShiftID: fx.shift.ID})
	require.NoError(t, err)

	_, err = svc.ClockOut(ctx, fx.caregiverUser, &models.ClockOutRequest{TimeLogID: log.ID})
	require.NoError(t, err)

	_, err = svc.ClockOut(ctx, fx.caregiverUser, &models.ClockOutRequest{TimeLogID: log.ID})
	assert.ErrorIs(t, err, ErrAlreadyClockedOut)

	entries := entriesFor(t, db, models.AuditActionClockOut, models.ResourceTypeTimeLog)
	assert.Len(t, entries, 1)
}

func TestOverrideRestrictedToOfficeRoles(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &TimeLogService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	log, err := svc.ClockIn(ctx, fx.caregiverUser, &models.ClockInRequest{ShiftID: fx.shift.ID})
	require.NoError(t, err)

	// The caregiver's own update grant does not reach overrides.
	adjusted := time.Now().UTC().Add(-30 * time.Minute)
	_, err = svc.Override(ctx, fx.caregiverUser, &models.OverrideTimeLogRequest{
		TimeLogID: log.ID,
		ClockInAt: &adjusted,
		Reason:    "forgot to clock in",
	})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	entries := entriesFor(t, db, models.AuditActionAccessDenied, models.ResourceTypeTimeLog)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "evv_override")
}

func TestOverrideAdjustsTimesAndAudits(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &TimeLogService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	staff := CreateTestUser(t, db, "staff@curelia.test", models.RoleStaff)
	log, err := svc.ClockIn(ctx, fx.caregiverUser, &models.ClockInRequest{ShiftID: fx.shift.ID})
	require.NoError(t, err)

	clockIn := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	clockOut := clockIn.Add(90 * time.Minute)
	adjusted, err := svc.Override(ctx, staff, &models.OverrideTimeLogRequest{
		TimeLogID:  log.ID,
		ClockInAt:  &clockIn,
		ClockOutAt: &clockOut,
		Reason:     "device offline during visit",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TimeLogStatusOverridden, adjusted.Status)
	require.NotNil(t, adjusted.AdjustedByID)
	assert.Equal(t, staff.ID, *adjusted.AdjustedByID)
	assert.True(t, adjusted.ClockInAt.Equal(clockIn))
	assert.True(t, adjusted.ClockOutAt.Equal(clockOut))

	entries := entriesFor(t, db, models.AuditActionEVVOverride, models.ResourceTypeTimeLog)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Metadata), "device offline during visit")
	assert.Contains(t, string(entries[0].Metadata), "clock_in_at")
	assert.Contains(t, string(entries[0].Metadata), "clock_out_at")
}

func TestCaregiverListsOnlyOwnTimeLogs(t *testing.T) {
	db, deps := newServiceDeps(t)
	svc := &TimeLogService{deps}
	ctx := context.Background()
	fx := newEVVFixture(t, db)

	otherUser := CreateTestUser(t, db, "other@curelia.test", models.RoleCaregiver)
	otherCaregiver := CreateTestCaregiver(t, db, otherUser.ID)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.TimeLog{
		CaregiverID: otherCaregiver.ID,
		ClientID:    fx.client.ID,
		ClockInAt:   &now,
		Status:      models.TimeLogStatusPending,
	}).Error)

	_, err := svc.ClockIn(ctx, fx.caregiverUser, &models.ClockInRequest{ShiftID: fx.shift.ID})
	require.NoError(t, err)

	logs, err := svc.ListTimeLogs(ctx, fx.caregiverUser)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, fx.caregiver.ID, logs[0].CaregiverID)
}
