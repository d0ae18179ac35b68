package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/policy"
	"github.com/treehousetherapy/curelia-health/v1/services"
	"gorm.io/gorm"
)

func setupEvaluator(t *testing.T) (*gorm.DB, *policy.Evaluator) {
	t.Helper()
	db := services.SetupSQLiteTestDB(t)
	return db, policy.NewEvaluator(db, audit.NewLedger(db))
}

// TestRoleCapabilityMatrix walks every (role, action) cell of the
// capability table against a resource the actor has no relationship
// with, so own/assigned grants resolve to denials and the table's
// yes/no shape is observable directly.
func TestRoleCapabilityMatrix(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	client := services.CreateTestClient(t, db, "Unrelated")
	ctx := context.Background()

	cases := []struct {
		role    models.Role
		action  models.Action
		allowed bool
	}{
		{models.RoleAdmin, models.ActionCreate, true},
		{models.RoleAdmin, models.ActionRead, true},
		{models.RoleAdmin, models.ActionUpdate, true},
		{models.RoleAdmin, models.ActionDelete, true},
		{models.RoleAdmin, models.ActionRestore, true},

		{models.RoleStaff, models.ActionCreate, true},
		{models.RoleStaff, models.ActionRead, true},
		{models.RoleStaff, models.ActionUpdate, true},
		{models.RoleStaff, models.ActionDelete, false},
		{models.RoleStaff, models.ActionRestore, false},

		{models.RoleCaregiver, models.ActionCreate, false},
		{models.RoleCaregiver, models.ActionRead, false}, // not assigned
		{models.RoleCaregiver, models.ActionUpdate, false},
		{models.RoleCaregiver, models.ActionDelete, false},
		{models.RoleCaregiver, models.ActionRestore, false},

		{models.RoleClient, models.ActionCreate, false},
		{models.RoleClient, models.ActionRead, false}, // not own record
		{models.RoleClient, models.ActionUpdate, false},
		{models.RoleClient, models.ActionDelete, false},

		{models.RoleFamily, models.ActionCreate, false},
		{models.RoleFamily, models.ActionRead, false},
		{models.RoleFamily, models.ActionUpdate, false},
		{models.RoleFamily, models.ActionDelete, false},
	}

	actors := map[models.Role]*models.User{}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleStaff, models.RoleCaregiver, models.RoleClient, models.RoleFamily} {
		actors[role] = services.CreateTestUser(t, db, string(role)+"@matrix.test", role)
	}

	for _, tc := range cases {
		t.Run(string(tc.role)+"_"+string(tc.action), func(t *testing.T) {
			decision := evaluator.Authorize(ctx, actors[tc.role], tc.action, models.ResourceTypeClient, client)
			assert.Equal(t, tc.allowed, decision.Allowed)
		})
	}
}

func TestDenialWritesAccessDeniedEntry(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	caregiver := services.CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	services.CreateTestCaregiver(t, db, caregiver.ID)
	client := services.CreateTestClient(t, db, "Target")
	ctx := context.Background()

	decision := evaluator.Authorize(ctx, caregiver, models.ActionRead, models.ResourceTypeClient, client)
	require.False(t, decision.Allowed)
	assert.Equal(t, policy.ReasonNotAssigned, decision.Reason)

	var entry models.AuditLog
	require.NoError(t, db.Where("action = ? AND resource_id = ?", models.AuditActionAccessDenied, client.ID).First(&entry).Error)
	assert.Equal(t, caregiver.ID, *entry.UserID)
	assert.Equal(t, models.ResourceTypeClient, entry.ResourceType)
	assert.Contains(t, string(entry.Metadata), "not_assigned")
}

func TestNilActorIsDenied(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	client := services.CreateTestClient(t, db, "Anon")

	decision := evaluator.Authorize(context.Background(), nil, models.ActionRead, models.ResourceTypeClient, client)
	assert.False(t, decision.Allowed)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ? AND user_id IS NULL", models.AuditActionAccessDenied).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCaregiverAssignedThroughAssignmentRow(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	user := services.CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := services.CreateTestCaregiver(t, db, user.ID)
	assignedClient := services.CreateTestClient(t, db, "Assigned")
	otherClient := services.CreateTestClient(t, db, "Other")
	ctx := context.Background()

	require.NoError(t, db.Create(&models.CareAssignment{
		CaregiverID: caregiver.ID,
		ClientID:    assignedClient.ID,
	}).Error)

	decision := evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, assignedClient)
	assert.True(t, decision.Allowed)

	decision = evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, otherClient)
	assert.False(t, decision.Allowed)
}

func TestCaregiverAssignedThroughShift(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	user := services.CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := services.CreateTestCaregiver(t, db, user.ID)
	client := services.CreateTestClient(t, db, "Shifted")
	ctx := context.Background()

	shift := &models.Shift{
		CaregiverID: caregiver.ID,
		ClientID:    client.ID,
		Status:      models.ShiftStatusScheduled,
	}
	require.NoError(t, db.Create(shift).Error)

	decision := evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, client)
	assert.True(t, decision.Allowed)

	// The shift itself resolves through the caregiver profile.
	decision = evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeShift, shift)
	assert.True(t, decision.Allowed)
}

// TestAssignedScopeFiltersListQueries verifies the predicate works as a
// list filter, not only as a single-row check, so list endpoints cannot
// leak unassigned rows.
func TestAssignedScopeFiltersListQueries(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	user := services.CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	caregiver := services.CreateTestCaregiver(t, db, user.ID)
	assigned := services.CreateTestClient(t, db, "Mine")
	services.CreateTestClient(t, db, "NotMine")
	ctx := context.Background()

	require.NoError(t, db.Create(&models.CareAssignment{
		CaregiverID: caregiver.ID,
		ClientID:    assigned.ID,
	}).Error)

	decision := evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, nil)
	require.True(t, decision.Allowed)
	require.NotNil(t, decision.Scope)

	var clients []models.Client
	require.NoError(t, db.Scopes(decision.Scope).Find(&clients).Error)
	require.Len(t, clients, 1)
	assert.Equal(t, assigned.ID, clients[0].ID)
}

func TestClientReadsOwnRecordOnly(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	user := services.CreateTestUser(t, db, "client@curelia.test", models.RoleClient)
	ctx := context.Background()

	userID := user.ID
	own := &models.Client{UserID: &userID, FirstName: "Self", LastName: "Record", Status: models.ClientStatusActive}
	require.NoError(t, db.Create(own).Error)
	other := services.CreateTestClient(t, db, "Someone")

	assert.True(t, evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, own).Allowed)
	assert.False(t, evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, other).Allowed)
	assert.False(t, evaluator.Authorize(ctx, user, models.ActionUpdate, models.ResourceTypeClient, own).Allowed)
}

func TestFamilyReadsLinkedClientOnly(t *testing.T) {
	db, evaluator := setupEvaluator(t)
	user := services.CreateTestUser(t, db, "family@curelia.test", models.RoleFamily)
	linked := services.CreateTestClient(t, db, "Relative")
	other := services.CreateTestClient(t, db, "Stranger")
	ctx := context.Background()

	require.NoError(t, db.Create(&models.FamilyMember{
		UserID:       user.ID,
		ClientID:     linked.ID,
		Relationship: "daughter",
	}).Error)

	assert.True(t, evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, linked).Allowed)
	assert.False(t, evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, other).Allowed)

	// The own scope exposes exactly the linked record in list queries.
	decision := evaluator.Authorize(ctx, user, models.ActionRead, models.ResourceTypeClient, nil)
	require.True(t, decision.Allowed)
	var clients []models.Client
	require.NoError(t, db.Scopes(decision.Scope).Find(&clients).Error)
	require.Len(t, clients, 1)
	assert.Equal(t, linked.ID, clients[0].ID)
}
