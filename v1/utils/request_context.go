package utils

import (
	"context"

	"github.com/treehousetherapy/curelia-health/v1/models"
)

// ContextKey is the key type used for values stored in request contexts
type ContextKey string

const (
	// ContextKeyRequestMeta holds the transport-level request metadata
	ContextKeyRequestMeta ContextKey = "request_meta"
	// ContextKeyActor holds the authenticated user
	ContextKeyActor ContextKey = "actor"
	// ContextKeySessionID holds the session identifier from the token
	ContextKeySessionID ContextKey = "session_id"
)

// RequestMeta is the per-request context the transport layer supplies:
// client IP, user agent, and a generated correlation id. The audit
// ledger attaches it verbatim to every entry produced during the request.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// SetRequestMeta stores request metadata in the context
func SetRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, ContextKeyRequestMeta, meta)
}

// GetRequestMeta retrieves request metadata from the context. A missing
// value returns the zero RequestMeta; entries recorded outside a request
// (system actions, tests) simply carry no transport context.
func GetRequestMeta(ctx context.Context) RequestMeta {
	meta, ok := ctx.Value(ContextKeyRequestMeta).(RequestMeta)
	if !ok {
		return RequestMeta{}
	}
	return meta
}

// SetActor stores the authenticated user in the context
func SetActor(ctx context.Context, actor *models.User) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// GetActor retrieves the authenticated user from the context. The
// second value reports whether a request actually carries an actor, so
// handlers can reject unauthenticated requests without a nil check.
func GetActor(ctx context.Context) (*models.User, bool) {
	actor, ok := ctx.Value(ContextKeyActor).(*models.User)
	if !ok || actor == nil {
		return nil, false
	}
	return actor, true
}

// SetSessionID stores the session identifier in the context
func SetSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// GetSessionID retrieves the session identifier from the context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeySessionID).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
