package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"meridian/internal/domain"

	"github.com/redis/go-redis/v9"
)

// memoryGuard remembers spent token IDs until their natural expiry. Like
// the memory limiter, it is correct only for a single gateway instance.
type memoryGuard struct {
	mu      sync.Mutex
	now     func() time.Time
	spent   map[string]time.Time
	maxKeys int
}

func NewMemoryGuard(now func() time.Time, maxKeys int) domain.ReplayGuard {
	if now == nil {
		now = time.Now
	}
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &memoryGuard{
		now:     now,
		spent:   make(map[string]time.Time),
		maxKeys: maxKeys,
	}
}

func (g *memoryGuard) MarkUsed(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if tokenID == "" {
		return false, errors.New("token id is required")
	}
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if expiry, ok := g.spent[tokenID]; ok && now.Before(expiry) {
		return false, nil
	}
	if len(g.spent) >= g.maxKeys {
		for id, expiry := range g.spent {
			if !now.Before(expiry) {
				delete(g.spent, id)
			}
		}
	}
	if len(g.spent) >= g.maxKeys {
		return false, errors.New("replay guard capacity exceeded")
	}
	g.spent[tokenID] = now.Add(ttl)
	return true, nil
}

// redisGuard marks a token spent with SET NX, so exactly one refresh of a
// given token wins across all replicas.
type redisGuard struct {
	client *redis.Client
}

func NewRedisGuard(addr, password string, db int) (domain.ReplayGuard, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisGuard{client: client}, nil
}

func (g *redisGuard) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if tokenID == "" {
		return false, errors.New("token id is required")
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return g.client.SetNX(ctx, "refresh:spent:"+tokenID, 1, ttl).Result()
}
