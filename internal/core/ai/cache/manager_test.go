package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"recipe-sheet/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestManagerGetSet(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(&config.CacheConfig{MaxSize: 10, TTL: time.Hour}, clock.now)
	ctx := context.Background()

	_, err := m.Get(ctx, "bolo")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "bolo", `{"nomeReceita":"Bolo"}`))
	val, err := m.Get(ctx, "bolo")
	require.NoError(t, err)
	assert.Equal(t, `{"nomeReceita":"Bolo"}`, val)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])

	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Stats()["size"])
	assert.Equal(t, int64(1), m.Stats()["hits"])
}

func TestManagerExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(&config.CacheConfig{MaxSize: 10, TTL: time.Minute}, clock.now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "bolo", "v"))
	clock.t = clock.t.Add(2 * time.Minute)

	_, err := m.Get(ctx, "bolo")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, m.Stats()["size"])
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(&config.CacheConfig{MaxSize: 2, TTL: time.Hour}, clock.now)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, m.Set(ctx, "b", "2"))

	// a 被讀過一次，b 應該先被淘汰
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Second)
	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(&config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = NewStore(&config.CacheConfig{Enabled: true, Backend: config.CacheBackendMemory, MaxSize: 1, TTL: time.Minute, CleanupInterval: time.Minute})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	_, err = NewStore(&config.CacheConfig{Enabled: true, Backend: "memcached"})
	assert.ErrorContains(t, err, "unknown cache backend")
}

func TestRedisKeyUsesHash(t *testing.T) {
	key := redisKey("receita de bolo")
	assert.True(t, strings.HasPrefix(key, redisKeyPrefix+"text:"))
	assert.NotContains(t, key, "bolo")
	assert.Equal(t, key, redisKey("receita de bolo"))
}
