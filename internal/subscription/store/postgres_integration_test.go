//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beam/internal/subscription"
	substore "beam/internal/subscription/store"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
	"beam/pkg/testutil/containers"
)

func TestPostgresUpsertReplacesTrial(t *testing.T) {
	store := substore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()
	companyID := domain.NewCompanyID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	first := subscription.NewTrial(companyID, "starter", domain.BillingMonthly, now, 14)
	require.NoError(t, store.Upsert(ctx, first))

	// Reselecting a plan mid-wizard replaces the row for the company.
	second := subscription.NewTrial(companyID, "professional", domain.BillingYearly, now, 14)
	require.NoError(t, store.Upsert(ctx, second))

	got, err := store.FindByCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, domain.PlanID("professional"), got.PlanID)
	assert.Equal(t, domain.BillingYearly, got.BillingCycle)
	assert.Equal(t, domain.SubscriptionTrial, got.Status)
}

func TestPostgresSetStatus(t *testing.T) {
	store := substore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()
	companyID := domain.NewCompanyID()

	require.NoError(t, store.Upsert(ctx,
		subscription.NewTrial(companyID, "starter", domain.BillingMonthly, time.Now(), 14)))

	require.NoError(t, store.SetStatus(ctx, companyID, domain.SubscriptionActive))
	got, err := store.FindByCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, got.Status)

	assert.ErrorIs(t, store.SetStatus(ctx, domain.NewCompanyID(), domain.SubscriptionActive),
		sentinel.ErrNotFound)
}

func TestPostgresExpireTrials(t *testing.T) {
	store := substore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()
	now := time.Now().UTC()

	lapsed := domain.NewCompanyID()
	require.NoError(t, store.Upsert(ctx,
		subscription.NewTrial(lapsed, "starter", domain.BillingMonthly, now.AddDate(0, 0, -30), 14)))

	current := domain.NewCompanyID()
	require.NoError(t, store.Upsert(ctx,
		subscription.NewTrial(current, "starter", domain.BillingMonthly, now, 14)))

	activated := domain.NewCompanyID()
	require.NoError(t, store.Upsert(ctx,
		subscription.NewTrial(activated, "starter", domain.BillingMonthly, now.AddDate(0, 0, -30), 14)))
	require.NoError(t, store.SetStatus(ctx, activated, domain.SubscriptionActive))

	expired, err := store.ExpireTrials(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []domain.CompanyID{lapsed}, expired)

	got, err := store.FindByCompany(ctx, lapsed)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionPastDue, got.Status)

	// Active subscriptions and running trials are left alone.
	got, err = store.FindByCompany(ctx, current)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionTrial, got.Status)

	// A second sweep finds nothing new.
	expired, err = store.ExpireTrials(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, expired)
}
