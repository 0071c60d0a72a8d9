//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beam/internal/platform/config"
	platformredis "beam/internal/platform/redis"
	verifstore "beam/internal/verification/store"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
	"beam/pkg/testutil/containers"
)

func newRedisStore(t *testing.T) *verifstore.Redis {
	t.Helper()
	rc := containers.NewRedis(t)

	client, err := platformredis.New(config.RedisConfig{
		URL:          rc.URL,
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return verifstore.NewRedis(client)
}

func TestRedisAllowSendThrottles(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()
	companyID := domain.NewCompanyID()

	require.NoError(t, store.AllowSend(ctx, companyID, time.Second, time.Now()))
	assert.ErrorIs(t, store.AllowSend(ctx, companyID, time.Second, time.Now()),
		sentinel.ErrInvalidState)

	// Another company has its own window.
	assert.NoError(t, store.AllowSend(ctx, domain.NewCompanyID(), time.Second, time.Now()))

	// The window reopens once the key expires.
	require.Eventually(t, func() bool {
		return store.AllowSend(ctx, companyID, time.Second, time.Now()) == nil
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedisConsumeIsSingleUse(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Consume(ctx, "jti-one", time.Minute, time.Now()))
	assert.ErrorIs(t, store.Consume(ctx, "jti-one", time.Minute, time.Now()),
		sentinel.ErrAlreadyUsed)
	assert.NoError(t, store.Consume(ctx, "jti-two", time.Minute, time.Now()))
}
