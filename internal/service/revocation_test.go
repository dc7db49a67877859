package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/testhelpers"
)

func exerciseRevocationStore(t *testing.T, store service.RevocationStore) {
	t.Helper()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Revoke(ctx, "jti-1", exp))
	require.NoError(t, store.Revoke(ctx, "jti-1", exp))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGormRevocationStore(t *testing.T) {
	exerciseRevocationStore(t, service.NewGormRevocationStore(testhelpers.SetupSQLite(t)))
}

func TestGormRevocationStorePostgres(t *testing.T) {
	exerciseRevocationStore(t, service.NewGormRevocationStore(testhelpers.SetupTestDatabase(t)))
}

func TestRedisRevocationStore(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	store := service.NewRedisRevocationStore(client)
	exerciseRevocationStore(t, store)

	ttl, err := client.TTL(ctx, "revoked:jti-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	require.NoError(t, store.Revoke(ctx, "stale", time.Now().Add(-time.Minute)))
	n, err := client.Exists(ctx, "revoked:stale").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
