package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

// Grant is what a supervisor approved: one debit of Amount on CardID.
type Grant struct {
	Token        string    `json:"token"`
	CardID       int64     `json:"card_id"`
	Amount       int64     `json:"amount"`
	SupervisorID int64     `json:"supervisor_id"`
	Reason       string    `json:"reason"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenStore holds single-use grants. Consume returns
// ErrAuthorizationRequired for unknown, expired or already used tokens.
type TokenStore interface {
	Issue(ctx context.Context, g *Grant, ttl time.Duration) error
	Consume(ctx context.Context, token string) (*Grant, error)
}

const redisKeyPrefix = "authz:grant:"

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Issue(ctx context.Context, g *Grant, ttl time.Duration) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("Issue: marshal: %w", err)
	}
	ok, err := s.client.SetNX(ctx, redisKeyPrefix+g.Token, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("Issue: %w", err)
	}
	if !ok {
		return fmt.Errorf("Issue: token already issued")
	}
	return nil
}

func (s *RedisTokenStore) Consume(ctx context.Context, token string) (*Grant, error) {
	key := redisKeyPrefix + token
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("Consume: %w", domain.ErrAuthorizationRequired)
		}
		return nil, fmt.Errorf("Consume: %w", err)
	}

	// Only the caller whose DEL removed the key owns the grant.
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("Consume: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("Consume: %w", domain.ErrAuthorizationRequired)
	}

	var g Grant
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("Consume: unmarshal: %w", err)
	}
	return &g, nil
}

// MemoryTokenStore is used when no Redis is configured. Grants do not
// survive a restart and are not shared between instances.
type MemoryTokenStore struct {
	mu     sync.Mutex
	grants map[string]memoryGrant
	now    func() time.Time
}

type memoryGrant struct {
	grant   Grant
	expires time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{grants: make(map[string]memoryGrant), now: time.Now}
}

func (s *MemoryTokenStore) Issue(_ context.Context, g *Grant, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.grants {
		if now.After(v.expires) {
			delete(s.grants, k)
		}
	}
	if _, exists := s.grants[g.Token]; exists {
		return fmt.Errorf("Issue: token already issued")
	}
	s.grants[g.Token] = memoryGrant{grant: *g, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Consume(_ context.Context, token string) (*Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mg, ok := s.grants[token]
	if !ok {
		return nil, fmt.Errorf("Consume: %w", domain.ErrAuthorizationRequired)
	}
	delete(s.grants, token)
	if s.now().After(mg.expires) {
		return nil, fmt.Errorf("Consume: %w", domain.ErrAuthorizationRequired)
	}
	g := mg.grant
	return &g, nil
}
