package session

import (
	"context"
	"errors"
	"sync"
	"time"

	redisclient "github.com/oduntan/giftregistry-backend/pkg/redis"
)

// Store persists per-browser-session payloads by session key. The cart is the
// only consumer; keeping the surface to get/set/clear keeps cart logic
// unit-testable without a live Redis.
type Store interface {
	Get(ctx context.Context, sessionID string) (string, bool, error)
	Set(ctx context.Context, sessionID, payload string) error
	Clear(ctx context.Context, sessionID string) error
}

type redisKeyer interface {
	CartKey(sessionID string) string
}

type redisStore struct {
	client *redisclient.Client
	keyer  redisKeyer
	ttl    time.Duration
}

// NewRedisStore builds the production session store backed by Redis.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &redisStore{client: client, keyer: client, ttl: ttl}, nil
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (string, bool, error) {
	payload, err := s.client.Get(ctx, s.keyer.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return payload, true, nil
}

func (s *redisStore) Set(ctx context.Context, sessionID, payload string) error {
	return s.client.Set(ctx, s.keyer.CartKey(sessionID), payload, s.ttl)
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.keyer.CartKey(sessionID))
}

// MemoryStore keeps session payloads in process memory. Used by tests and
// local single-process runs; not safe across replicas.
type MemoryStore struct {
	mu       sync.Mutex
	payloads map[string]string
}

// NewMemoryStore builds an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payloads: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.payloads[sessionID]
	return payload, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[sessionID] = payload
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payloads, sessionID)
	return nil
}
