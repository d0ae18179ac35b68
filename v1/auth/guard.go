package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/treehousetherapy/curelia-health/config"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/metrics"
	"github.com/treehousetherapy/curelia-health/v1/models"
	"github.com/treehousetherapy/curelia-health/v1/store"
	"github.com/treehousetherapy/curelia-health/v1/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Guard validates credentials and session state. Every authentication
// outcome (success, or any failure where an actor can be identified)
// emits exactly one audit entry before the result is returned.
type Guard struct {
	db       *gorm.DB
	ledger   *audit.Ledger
	tokens   *TokenService
	sessions SessionStore
	cfg      config.SecurityConfig
}

// NewGuard wires the credential guard from its collaborators. The
// configuration is captured at construction; nothing is read from
// ambient state afterwards.
func NewGuard(db *gorm.DB, ledger *audit.Ledger, tokens *TokenService, sessions SessionStore, cfg config.SecurityConfig) *Guard {
	return &Guard{db: db, ledger: ledger, tokens: tokens, sessions: sessions, cfg: cfg}
}

// LoginResult is what a successful password authentication hands back.
type LoginResult struct {
	User      *models.User
	Token     string
	SessionID string
}

// AuthenticateToken resolves a bearer token to its actor and session.
// Parse and signature failures return without an audit entry since no
// actor can be identified; every later failure is audited.
func (g *Guard) AuthenticateToken(ctx context.Context, rawToken string) (*models.User, string, error) {
	claims, err := g.tokens.Parse(rawToken)
	if err != nil {
		return nil, "", err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, "", err
	}

	var user models.User
	lookupErr := g.db.WithContext(ctx).Scopes(store.NotDeleted).Where("id = ?", userID).First(&user).Error
	if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		g.recordAuth(ctx, nil, models.AuditActionAccessDenied, fmt.Sprintf("Token referenced unknown actor %s", userID), nil)
		return nil, "", ErrUnknownActor
	}
	if lookupErr != nil {
		return nil, "", fmt.Errorf("actor lookup failed: %w", lookupErr)
	}

	if !user.IsActive {
		g.recordAuth(ctx, &user, models.AuditActionAccessDenied, "Token presented for inactive account", nil)
		return nil, "", ErrInactiveActor
	}
	if user.IsLocked {
		g.recordAuth(ctx, &user, models.AuditActionAccessDenied, "Token presented for locked account", nil)
		return nil, "", ErrLockedActor
	}

	// Idle-session check. A rejected request must not refresh the
	// window, so Active is read-only and Touch happens only on success.
	if claims.SessionID != "" {
		active, err := g.sessions.Active(ctx, claims.SessionID)
		if err != nil {
			return nil, "", fmt.Errorf("session lookup failed: %w", err)
		}
		if !active {
			metrics.SessionExpiriesTotal.Inc()
			g.recordAuth(ctx, &user, models.AuditActionAccessDenied, "Session expired due to inactivity", nil)
			return nil, "", ErrSessionExpired
		}
		if err := g.sessions.Touch(ctx, claims.SessionID); err != nil {
			return nil, "", fmt.Errorf("session touch failed: %w", err)
		}
	}

	return &user, claims.SessionID, nil
}

// AuthenticateByPassword verifies an email/password pair and applies the
// lockout policy. The failed-attempt counter is incremented with a
// single atomic UPDATE so concurrent failures against one account never
// under-count; the lock flag flips in the same statement when the
// post-increment counter reaches the threshold.
func (g *Guard) AuthenticateByPassword(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := g.db.WithContext(ctx).Scopes(store.NotDeleted).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.LoginAttemptsTotal.WithLabelValues("unknown_email").Inc()
		g.recordAuth(ctx, nil, models.AuditActionLoginFailed,
			fmt.Sprintf("Failed login attempt for unknown email %s", email), map[string]interface{}{"email": email})
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		if err := g.registerFailedAttempt(ctx, &user); err != nil {
			return nil, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("wrong_password").Inc()
		g.recordAuth(ctx, &user, models.AuditActionLoginFailed,
			fmt.Sprintf("Failed login attempt for %s", email), nil)
		return nil, ErrInvalidCredentials
	}

	// Account-state checks run only after the password verifies, so a
	// guesser learns nothing about the account from these outcomes.
	if !user.IsActive {
		metrics.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		g.recordAuth(ctx, &user, models.AuditActionAccessDenied, "Login attempt on inactive account", nil)
		return nil, ErrInactiveActor
	}
	if user.IsLocked {
		metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
		g.recordAuth(ctx, &user, models.AuditActionAccessDenied, "Login attempt on locked account", nil)
		return nil, ErrLockedActor
	}
	if g.passwordExpired(&user) {
		metrics.LoginAttemptsTotal.WithLabelValues("password_expired").Inc()
		g.recordAuth(ctx, &user, models.AuditActionAccessDenied, "Login attempt with expired password", nil)
		return nil, ErrPasswordExpired
	}

	// Success: reset the counter and stamp the login.
	meta := utils.GetRequestMeta(ctx)
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"last_login_at":         now,
		"last_login_ip":         meta.IPAddress,
	}
	if err := g.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("login bookkeeping failed: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LastLoginAt = &now
	user.LastLoginIP = meta.IPAddress

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	g.recordAuth(ctx, &user, models.AuditActionLogin, fmt.Sprintf("Successful login for %s", email), nil)
	return &user, nil
}

// Login authenticates by password and, on success, opens a session and
// issues an access token bound to it.
func (g *Guard) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := g.AuthenticateByPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sessionID := NewSessionID()
	if err := g.sessions.Start(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("session start failed: %w", err)
	}

	token, err := g.tokens.Issue(user.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("token issue failed: %w", err)
	}

	return &LoginResult{User: user, Token: token, SessionID: sessionID}, nil
}

// Logout revokes the session and audits the event.
func (g *Guard) Logout(ctx context.Context, actor *models.User, sessionID string) error {
	if sessionID != "" {
		if err := g.sessions.Revoke(ctx, sessionID); err != nil {
			return fmt.Errorf("session revoke failed: %w", err)
		}
	}
	g.recordAuth(ctx, actor, models.AuditActionLogout, fmt.Sprintf("Logout for %s", actor.Email), nil)
	return nil
}

// ChangePassword verifies the current password, stores the new hash, and
// stamps password_changed_at so the expiry clock restarts.
func (g *Guard) ChangePassword(ctx context.Context, actor *models.User, current, next string) error {
	if bcrypt.CompareHashAndPassword([]byte(actor.HashedPassword), []byte(current)) != nil {
		g.recordAuth(ctx, actor, models.AuditActionAccessDenied, "Password change rejected: current password mismatch", nil)
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), g.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("password hashing failed: %w", err)
	}

	now := time.Now().UTC()
	err = g.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", actor.ID).Updates(map[string]interface{}{
		"hashed_password":     string(hash),
		"password_changed_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("password update failed: %w", err)
	}
	actor.HashedPassword = string(hash)
	actor.PasswordChangedAt = &now

	g.recordAuth(ctx, actor, models.AuditActionPasswordChanged, fmt.Sprintf("Password changed for %s", actor.Email), nil)
	return nil
}

// HashPassword hashes a plaintext password with the configured cost.
func (g *Guard) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("password hashing failed: %w", err)
	}
	return string(hash), nil
}

// registerFailedAttempt bumps the counter and locks the account at the
// threshold, all inside one UPDATE.
func (g *Guard) registerFailedAttempt(ctx context.Context, user *models.User) error {
	err := g.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
		"is_locked":             gorm.Expr("failed_login_attempts + 1 >= ? OR is_locked", g.cfg.LockoutThreshold),
	}).Error
	if err != nil {
		return fmt.Errorf("failed-attempt bookkeeping failed: %w", err)
	}

	// Reload the row so the caller and the lockout metric see the
	// post-increment state.
	var fresh models.User
	if err := g.db.WithContext(ctx).First(&fresh, "id = ?", user.ID).Error; err == nil {
		if fresh.IsLocked && !user.IsLocked {
			metrics.AccountLockoutsTotal.Inc()
		}
		*user = fresh
	}
	return nil
}

// passwordExpired reports whether the password predates the configured
// maximum age. Accounts that never changed their password are not
// treated as expired; the stamp is set on creation.
func (g *Guard) passwordExpired(user *models.User) bool {
	if g.cfg.PasswordMaxAge <= 0 || user.PasswordChangedAt == nil {
		return false
	}
	return user.PasswordChangedAt.Before(time.Now().Add(-g.cfg.PasswordMaxAge))
}

// recordAuth writes the single audit entry for an authentication
// outcome. A failed write is escalated through the ledger's own logging
// and metrics; it cannot change the authentication result.
func (g *Guard) recordAuth(ctx context.Context, user *models.User, action models.AuditAction, description string, metadata map[string]interface{}) {
	entry := audit.Entry{
		Action:       action,
		ResourceType: models.ResourceTypeUser,
		Description:  description,
		Metadata:     metadata,
	}
	if user != nil {
		id := user.ID
		entry.ActorID = &id
		entry.ResourceID = &id
	}
	_, _ = g.ledger.Record(ctx, entry)
}
