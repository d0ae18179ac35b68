package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// SecurityConfig carries every tunable the credential guard and policy
// evaluator depend on. It is built once at startup and injected, so tests
// can construct deterministic values instead of reading ambient state.
type SecurityConfig struct {
	// JWTSecret signs and verifies access tokens (HS256).
	JWTSecret string

	// AccessTokenTTL is the lifetime encoded into issued tokens.
	AccessTokenTTL time.Duration

	// LockoutThreshold is the number of consecutive failed password
	// attempts after which the account is locked.
	LockoutThreshold int

	// SessionIdleTimeout is the inactivity window after which an
	// authenticated session is rejected.
	SessionIdleTimeout time.Duration

	// PasswordMaxAge forces a password change after this duration.
	// Zero disables the expiry check.
	PasswordMaxAge time.Duration

	// BcryptCost is the cost factor for password hashing.
	BcryptCost int
}

// DefaultSecurityConfig returns the HIPAA-oriented defaults used in
// production: 5-attempt lockout, 30 minute idle timeout, 90 day password
// expiry.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		AccessTokenTTL:     time.Hour,
		LockoutThreshold:   5,
		SessionIdleTimeout: 30 * time.Minute,
		PasswordMaxAge:     90 * 24 * time.Hour,
		BcryptCost:         bcrypt.DefaultCost,
	}
}

// LoadSecurityConfig builds a SecurityConfig from environment variables,
// falling back to defaults for anything unset.
func LoadSecurityConfig() (SecurityConfig, error) {
	cfg := DefaultSecurityConfig()

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg.AccessTokenTTL = getEnvMinutes("ACCESS_TOKEN_TTL_MINUTES", cfg.AccessTokenTTL)
	cfg.LockoutThreshold = GetEnvInt("LOCKOUT_THRESHOLD", cfg.LockoutThreshold)
	cfg.SessionIdleTimeout = getEnvMinutes("SESSION_TIMEOUT_MINUTES", cfg.SessionIdleTimeout)

	if days := GetEnvInt("PASSWORD_EXPIRY_DAYS", 90); days > 0 {
		cfg.PasswordMaxAge = time.Duration(days) * 24 * time.Hour
	} else {
		cfg.PasswordMaxAge = 0
	}

	return cfg, nil
}

// Validate checks the configuration for values that would silently
// disable security controls.
func (c SecurityConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.LockoutThreshold <= 0 {
		return fmt.Errorf("lockout threshold must be positive, got %d", c.LockoutThreshold)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be positive, got %s", c.SessionIdleTimeout)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range", c.BcryptCost)
	}
	return nil
}

// RedisConfig holds connection settings for the session store.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// LoadRedisConfig reads Redis connection settings from the environment.
// An empty Addr means sessions fall back to the in-process store.
func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Username: os.Getenv("REDIS_USERNAME"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       GetEnvInt("REDIS_DB", 0),
	}
}

// GetEnvOrDefault returns the environment variable value or a default
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt parses an integer environment variable with a default.
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetEnvDuration parses a duration environment variable ("30s", "1h")
// with a default.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvMinutes(key string, defaultValue time.Duration) time.Duration {
	if n := GetEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Minute
	}
	return defaultValue
}
