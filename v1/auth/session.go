package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore tracks last-activity per authenticated session for the
// idle-timeout check. A session that has gone quiet for longer than the
// idle window simply disappears from the store.
//
// Active must not refresh the window: requests that end up rejected do
// not count as activity, so Touch is a separate, explicit call made only
// after the request has fully authenticated.
type SessionStore interface {
	// Start registers a new session as active now.
	Start(ctx context.Context, sessionID string) error
	// Active reports whether the session exists and is inside the idle
	// window. It does not refresh the window.
	Active(ctx context.Context, sessionID string) (bool, error)
	// Touch records activity, restarting the idle window.
	Touch(ctx context.Context, sessionID string) error
	// Revoke removes the session.
	Revoke(ctx context.Context, sessionID string) error
}

// NewSessionID generates an opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// RedisSessionStore keeps sessions in Redis with the idle window as key
// TTL, so expiry needs no sweeper and is shared across instances.
type RedisSessionStore struct {
	client     *redis.Client
	idleWindow time.Duration
}

// NewRedisSessionStore creates a session store over an existing client
func NewRedisSessionStore(client *redis.Client, idleWindow time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, idleWindow: idleWindow}
}

func (s *RedisSessionStore) key(sessionID string) string {
	return "session:" + sessionID
}

// Start implements SessionStore
func (s *RedisSessionStore) Start(ctx context.Context, sessionID string) error {
	if err := s.client.Set(ctx, s.key(sessionID), time.Now().UTC().Format(time.RFC3339), s.idleWindow).Err(); err != nil {
		return fmt.Errorf("session start failed: %w", err)
	}
	return nil
}

// Active implements SessionStore
func (s *RedisSessionStore) Active(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("session lookup failed: %w", err)
	}
	return n > 0, nil
}

// Touch implements SessionStore
func (s *RedisSessionStore) Touch(ctx context.Context, sessionID string) error {
	if err := s.client.Set(ctx, s.key(sessionID), time.Now().UTC().Format(time.RFC3339), s.idleWindow).Err(); err != nil {
		return fmt.Errorf("session touch failed: %w", err)
	}
	return nil
}

// Revoke implements SessionStore
func (s *RedisSessionStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session revoke failed: %w", err)
	}
	return nil
}

// MemorySessionStore is the in-process fallback used when no Redis
// address is configured, and in tests. Expired entries are dropped
// lazily on lookup.
type MemorySessionStore struct {
	mu         sync.Mutex
	last       map[string]time.Time
	idleWindow time.Duration
	now        func() time.Time
}

// NewMemorySessionStore creates an in-process session store
func NewMemorySessionStore(idleWindow time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		last:       make(map[string]time.Time),
		idleWindow: idleWindow,
		now:        time.Now,
	}
}

// Start implements SessionStore
func (s *MemorySessionStore) Start(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[sessionID] = s.now()
	return nil
}

// Active implements SessionStore
func (s *MemorySessionStore) Active(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.last[sessionID]
	if !ok {
		return false, nil
	}
	if s.now().Sub(at) > s.idleWindow {
		delete(s.last, sessionID)
		return false, nil
	}
	return true, nil
}

// Touch implements SessionStore
func (s *MemorySessionStore) Touch(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[sessionID] = s.now()
	return nil
}

// Revoke implements SessionStore
func (s *MemorySessionStore) Revoke(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, sessionID)
	return nil
}
