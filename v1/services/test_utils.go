package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupSQLiteTestDB creates an in-memory SQLite database for testing
// and migrates every domain model. SQLite stores the uuid and jsonb
// columns as text, which is sufficient for behavior tests.
func SetupSQLiteTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Patient{},
		&models.PatientContact{},
		&models.Client{},
		&models.CarePlan{},
		&models.Caregiver{},
		&models.Credential{},
		&models.Shift{},
		&models.CareAssignment{},
		&models.FamilyMember{},
		&models.TimeLog{},
		&models.Document{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestUser inserts a user with the given role and a bcrypt hash
// of "password123".
func CreateTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		Email:             email,
		HashedPassword:    string(hash),
		FirstName:         "Test",
		LastName:          string(role),
		Role:              role,
		IsActive:          true,
		PasswordChangedAt: &now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestCaregiver inserts a caregiver profile for a user account.
func CreateTestCaregiver(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Caregiver {
	t.Helper()

	caregiver := &models.Caregiver{
		UserID:     userID,
		EmployeeID: "EMP-" + uuid.NewString()[:8],
		Status:     models.CaregiverStatusActive,
	}
	if err := db.Create(caregiver).Error; err != nil {
		t.Fatalf("Failed to create test caregiver: %v", err)
	}
	return caregiver
}

// CreateTestClient inserts an active client record.
func CreateTestClient(t *testing.T, db *gorm.DB, firstName string) *models.Client {
	t.Helper()

	client := &models.Client{
		FirstName: firstName,
		LastName:  "Test",
		Status:    models.ClientStatusActive,
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	return client
}
