package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flicky/go-bookstore-api/internal/model"
)

// CartStore holds one cart per session id. Load returns a nil cart when the
// session has none. Writes replace the whole cart, so concurrent requests of
// one session are last-write-wins.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (model.Cart, error)
	Save(ctx context.Context, sessionID string, cart model.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// GetOrCreate returns the session cart, or a fresh empty one that is stored
// on the next Save.
func GetOrCreate(ctx context.Context, store CartStore, sessionID string) (model.Cart, error) {
	cart, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = model.Cart{}
	}
	return cart, nil
}

type redisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) CartStore {
	return &redisCartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "session:" + sessionID + ":cart"
}

func (s *redisCartStore) Load(ctx context.Context, sessionID string) (model.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	cart := model.Cart{}
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

func (s *redisCartStore) Save(ctx context.Context, sessionID string, cart model.Cart) error {
	if cart == nil {
		cart = model.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *redisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// MemoryCartStore keeps carts in process memory.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]model.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]model.Cart)}
}

func (s *MemoryCartStore) Load(_ context.Context, sessionID string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return maps.Clone(cart), nil
}

func (s *MemoryCartStore) Save(_ context.Context, sessionID string, cart model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart == nil {
		cart = model.Cart{}
	}
	s.carts[sessionID] = maps.Clone(cart)
	return nil
}

func (s *MemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
