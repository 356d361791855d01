package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownStore grants an action at most once per window for each key.
type CooldownStore interface {
	// Allow reports whether key is outside its window and, if so, starts a new one.
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

// MemoryCooldowns keeps cooldown windows in process memory.
type MemoryCooldowns struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewMemoryCooldowns() *MemoryCooldowns {
	return &MemoryCooldowns{until: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryCooldowns) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.until[key]; ok && now.Before(until) {
		return false, nil
	}
	m.until[key] = now.Add(window)
	return true, nil
}

// Cleanup drops expired windows and returns how many were removed.
func (m *MemoryCooldowns) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, until := range m.until {
		if !now.Before(until) {
			delete(m.until, key)
			removed++
		}
	}
	return removed
}

// RedisCooldowns keeps cooldown windows in Redis so they survive restarts.
type RedisCooldowns struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCooldowns(rdb *redis.Client, prefix string) *RedisCooldowns {
	if prefix == "" {
		prefix = "cooldown"
	}
	return &RedisCooldowns{rdb: rdb, prefix: prefix}
}

func (r *RedisCooldowns) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.prefix+":"+key, time.Now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("redis cooldown %s: %w", key, err)
	}
	return ok, nil
}

// NewRedisClient connects to the Redis instance at url and verifies it answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
