package v1

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/treehousetherapy/curelia-health/config"
	"github.com/treehousetherapy/curelia-health/v1/models"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
}

// NewDatabaseConfig creates a new database configuration from environment variables
func NewDatabaseConfig() *DatabaseConfig {
	cfg := &DatabaseConfig{
		Host:            config.GetEnvOrDefault("DB_HOST", "localhost"),
		Port:            config.GetEnvOrDefault("DB_PORT", "5432"),
		Username:        config.GetEnvOrDefault("DB_USERNAME", "curelia"),
		Password:        config.GetEnvOrDefault("DB_PASSWORD", ""),
		Database:        config.GetEnvOrDefault("DB_NAME", "curelia_health"),
		SSLMode:         config.GetEnvOrDefault("DB_SSLMODE", "require"),
		MaxOpenConns:    config.GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    config.GetEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: config.GetEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: config.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		ConnectTimeout:  config.GetEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		RetryAttempts:   config.GetEnvInt("DB_RETRY_ATTEMPTS", 10),
		RetryDelay:      config.GetEnvDuration("DB_RETRY_DELAY", 2*time.Second),
	}

	slog.Info("Database configuration",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"connect_timeout", cfg.ConnectTimeout,
		"retry_attempts", cfg.RetryAttempts,
	)
	return cfg
}

// ConnectGORM establishes a GORM connection to the PostgreSQL database
// with retries and connection-pool tuning.
func ConnectGORM(cfg *DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Username, cfg.Password, cfg.Database, cfg.Port, cfg.SSLMode)

	var gormDB *gorm.DB
	var err error

	for attempt := 1; attempt <= cfg.RetryAttempts; attempt++ {
		slog.Info("Attempting database connection", "attempt", attempt, "max_attempts", cfg.RetryAttempts)

		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			slog.Warn("Failed to open database connection", "attempt", attempt, "error", err)
			if attempt < cfg.RetryAttempts {
				time.Sleep(cfg.RetryDelay)
				continue
			}
			return nil, fmt.Errorf("failed to open database connection after %d attempts: %w", cfg.RetryAttempts, err)
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}

		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		err = sqlDB.PingContext(ctx)
		cancel()

		if err != nil {
			slog.Warn("Failed to ping database", "attempt", attempt, "error", err)
			if attempt < cfg.RetryAttempts {
				time.Sleep(cfg.RetryDelay)
				continue
			}
			return nil, fmt.Errorf("failed to ping database after %d attempts: %w", cfg.RetryAttempts, err)
		}

		slog.Info("Database connection established",
			"host", cfg.Host,
			"port", cfg.Port,
			"database", cfg.Database)
		return gormDB, nil
	}

	return nil, fmt.Errorf("failed to establish database connection after %d attempts", cfg.RetryAttempts)
}

// AutoMigrate creates or updates the schema for every domain model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
}
