package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gardenaqua/gardenaqua-backend/pkg/redis"
)

// SessionStore persists carts keyed by session ID. Load returns an empty cart
// for unknown sessions; every successful write refreshes the TTL so active
// sessions never expire mid-shopping.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds the Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) (SessionStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func (s *redisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(), nil
		}
		return nil, err
	}

	cart := New()
	if err := json.Unmarshal([]byte(raw), cart); err != nil {
		// A corrupt payload is unrecoverable; start the session over rather
		// than failing every cart request.
		return New(), nil
	}
	return cart, nil
}

func (s *redisStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.client.CartKey(sessionID), string(payload), s.ttl)
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.client.CartKey(sessionID))
}

type memoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

// NewMemoryStore builds an in-process session store for tests and local runs
// without Redis.
func NewMemoryStore() SessionStore {
	return &memoryStore{carts: map[string][]byte{}}
}

func (s *memoryStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.carts[sessionID]
	if !ok {
		return New(), nil
	}
	cart := New()
	if err := json.Unmarshal(raw, cart); err != nil {
		return New(), nil
	}
	return cart, nil
}

func (s *memoryStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = payload
	return nil
}

func (s *memoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
