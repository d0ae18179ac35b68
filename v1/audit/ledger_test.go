package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/services"
	"github.com/treehousetherapy/curelia-health/v1/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestRecordWritesEntry(t *testing.T) {
	db := services.SetupSQLiteTestDB(t)
	ledger := audit.NewLedger(db)

	actorID := uuid.New()
	resourceID := uuid.New()
	ctx := utils.SetRequestMeta(context.Background(), utils.RequestMeta{
		RequestID: "req-123",
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})

	id, err := ledger.Record(ctx, audit.Entry{
		ActorID:      &actorID,
		Action:       models.AuditActionAccess,
		ResourceType: models.ResourceTypePatient,
		ResourceID:   &resourceID,
		Description:  "Accessed Patient " + resourceID.String(),
		Metadata:     map[string]interface{}{"changed_fields": []string{"allergies"}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	var row models.AuditLog
	require.NoError(t, db.First(&row, "id = ?", id).Error)
	assert.Equal(t, models.AuditActionAccess, row.Action)
	assert.Equal(t, &actorID, row.UserID)
	assert.Equal(t, "req-123", row.RequestID)
	assert.Equal(t, "10.0.0.1", row.IPAddress)
	assert.Equal(t, "test-agent", row.UserAgent)
	assert.Contains(t, string(row.Metadata), "allergies")
	assert.False(t, row.CreatedAt.IsZero())
}

func TestRecordRejectsInvalidEntries(t *testing.T) {
	db := services.SetupSQLiteTestDB(t)
	ledger := audit.NewLedger(db)
	ctx := context.Background()

	_, err := ledger.Record(ctx, audit.Entry{Action: "made_up", Description: "x"})
	assert.ErrorIs(t, err, audit.ErrInvalidEntry)

	_, err = ledger.Record(ctx, audit.Entry{Action: models.AuditActionAccess})
	assert.ErrorIs(t, err, audit.ErrInvalidEntry)
}

func TestRecordRetriesOnceThenEscalates(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	ledger := audit.NewLedger(gormDB)

	mock.ExpectExec(`INSERT INTO "audit_logs"`).WillReturnError(assert.AnError)
	mock.ExpectExec(`INSERT INTO "audit_logs"`).WillReturnError(assert.AnError)

	_, recordErr := ledger.Record(context.Background(), audit.Entry{
		Action:      models.AuditActionLogin,
		Description: "Login attempt",
	})
	assert.ErrorIs(t, recordErr, audit.ErrWrite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRetrySucceeds(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	ledger := audit.NewLedger(gormDB)

	mock.ExpectExec(`INSERT INTO "audit_logs"`).WillReturnError(assert.AnError)
	mock.ExpectExec(`INSERT INTO "audit_logs"`).WillReturnResult(sqlmock.NewResult(1, 1))

	id, recordErr := ledger.Record(context.Background(), audit.Entry{
		Action:      models.AuditActionLogin,
		Description: "Login attempt",
	})
	assert.NoError(t, recordErr)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestQueryNewestFirst(t *testing.T) {
	db := services.SetupSQLiteTestDB(t)
	ledger := audit.NewLedger(db)
	admin := services.CreateTestUser(t, db, "admin@curelia.test", models.RoleAdmin)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		row := models.AuditLog{
			Action:      models.AuditActionSystem,
			Description: "event",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&row).Error)
	}

	logs, err := ledger.Query(context.Background(), admin, audit.Filters{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))
	assert.True(t, logs[1].CreatedAt.After(logs[2].CreatedAt))
}

func TestQueryScopesNonAdminsToTheirOwnEntries(t *testing.T) {
	db := services.SetupSQLiteTestDB(t)
	ledger := audit.NewLedger(db)

	caregiver := services.CreateTestUser(t, db, "cg@curelia.test", models.RoleCaregiver)
	other := services.CreateTestUser(t, db, "other@curelia.test", models.RoleStaff)

	for _, userID := range []uuid.UUID{caregiver.ID, other.ID} {
		id := userID
		row := models.AuditLog{UserID: &id, Action: models.AuditActionAccess, Description: "event"}
		require.NoError(t, db.Create(&row).Error)
	}

	logs, err := ledger.Query(context.Background(), caregiver, audit.Filters{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, caregiver.ID, *logs[0].UserID)

	// Asking for another actor's entries is rejected outright.
	otherID := other.ID
	_, err = ledger.Query(context.Background(), caregiver, audit.Filters{ActorID: &otherID})
	assert.ErrorIs(t, err, audit.ErrQueryForbidden)

	_, err = ledger.Query(context.Background(), nil, audit.Filters{})
	assert.ErrorIs(t, err, audit.ErrQueryForbidden)
}

func TestQueryFilters(t *testing.T) {
	db := services.SetupSQLiteTestDB(t)
	ledger := audit.NewLedger(db)
	admin := services.CreateTestUser(t, db, "admin@curelia.test", models.RoleAdmin)

	resourceID := uuid.New()
	rows := []models.AuditLog{
		{Action: models.AuditActionDelete, ResourceType: models.ResourceTypeClient, ResourceID: &resourceID, Description: "a"},
		{Action: models.AuditActionAccess, ResourceType: models.ResourceTypeClient, Description: "b"},
		{Action: models.AuditActionAccess, ResourceType: models.ResourceTypePatient, Description: "c"},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	action := models.AuditActionAccess
	logs, err := ledger.Query(context.Background(), admin, audit.Filters{Action: &action})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = ledger.Query(context.Background(), admin, audit.Filters{ResourceID: &resourceID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionDelete, logs[0].Action)
}

func TestEntriesAreImmutable(t *testing.T) {
	db := services.SetupSQLiteTestDB(t)

	row := models.AuditLog{Action: models.AuditActionLogin, Description: "event"}
	require.NoError(t, db.Create(&row).Error)

	err := db.Model(&row).Update("description", "tampered").Error
	assert.ErrorContains(t, err, "immutable")

	err = db.Delete(&row).Error
	assert.ErrorContains(t, err, "immutable")

	var reloaded models.AuditLog
	require.NoError(t, db.First(&reloaded, "id = ?", row.ID).Error)
	assert.Equal(t, "event", reloaded.Description)
}
