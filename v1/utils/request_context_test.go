package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treehousetherapy/curelia-health/v1/models"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := context.Background()

	actor, ok := GetActor(ctx)
	assert.False(t, ok)
	assert.Nil(t, actor)

	user := &models.User{Email: "ctx@curelia.test", Role: models.RoleStaff}
	ctx = SetActor(ctx, user)

	actor, ok = GetActor(ctx)
	require.True(t, ok)
	assert.Equal(t, user, actor)
}

func TestNilActorReportsAbsent(t *testing.T) {
	ctx := SetActor(context.Background(), nil)

	actor, ok := GetActor(ctx)
	assert.False(t, ok)
	assert.Nil(t, actor)
}

func TestSessionIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	id, ok := GetSessionID(ctx)
	assert.False(t, ok)
	assert.Empty(t, id)

	ctx = SetSessionID(ctx, "session-abc")
	id, ok = GetSessionID(ctx)
	require.True(t, ok)
	assert.Equal(t, "session-abc", id)
}

func TestRequestMetaDefaultsToZero(t *testing.T) {
	meta := GetRequestMeta(context.Background())
	assert.Empty(t, meta.RequestID)
	assert.Empty(t, meta.IPAddress)

	ctx := SetRequestMeta(context.Background(), RequestMeta{RequestID: "req-1", IPAddress: "198.51.100.9"})
	meta = GetRequestMeta(ctx)
	assert.Equal(t, "req-1", meta.RequestID)
	assert.Equal(t, "198.51.100.9", meta.IPAddress)
}
