package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("round-trip-secret", time.Hour)
	userID := uuid.New()
	sessionID := NewSessionID()

	raw, err := tokens.Issue(userID, sessionID)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)

	parsed, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	tokens := NewTokenService("expiry-secret", -time.Minute)

	raw, err := tokens.Issue(uuid.New(), NewSessionID())
	require.NoError(t, err)

	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenSignedWithWrongSecretIsRejected(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	raw, err := issuer.Issue(uuid.New(), NewSessionID())
	require.NoError(t, err)

	_, err = verifier.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenIsRejected(t *testing.T) {
	tokens := NewTokenService("garbage-secret", time.Hour)

	_, err := tokens.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
