package utils

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCooldowns(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := NewMemoryCooldowns()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := m.Allow(ctx, "user:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.Allow(ctx, "user:1", time.Minute)
	assert.False(t, ok, "second call inside the window")

	ok, _ = m.Allow(ctx, "user:2", time.Minute)
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = m.Allow(ctx, "user:1", time.Minute)
	assert.True(t, ok, "window elapsed")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, m.Cleanup())
}

func TestRedisCooldowns(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewRedisCooldowns(rdb, "test-cooldown")
	key := uuid.NewString()

	ok, err := c.Allow(ctx, key, 200*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Allow(ctx, key, 200*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		ok, err := c.Allow(ctx, key, 200*time.Millisecond)
		return err == nil && ok
	}, 2*time.Second, 50*time.Millisecond)
}
