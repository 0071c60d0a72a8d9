//go:build integration

package company_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beam/internal/registration/models"
	companystore "beam/internal/registration/store/company"
	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/sentinel"
	"beam/pkg/testutil/containers"
)

func TestPostgresRoundTrip(t *testing.T) {
	store := companystore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	c := models.NewCompany(domain.NewCompanyID(), now)
	c.LegalName = "Roundtrip Trading LLC"
	c.BusinessType = "LLC"
	c.RegistrationNumber = "CN-7781"
	c.Email = "owner@roundtrip.ae"
	regDate := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	c.RegistrationDate = &regDate
	require.NoError(t, store.Create(ctx, c))

	got, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "AE", got.Country)
	assert.Equal(t, domain.CompanyPendingReview, got.Status)
	assert.Equal(t, "Roundtrip Trading LLC", got.LegalName)
	assert.Equal(t, "owner@roundtrip.ae", got.Email)
	require.NotNil(t, got.RegistrationDate)
	assert.Equal(t, regDate, got.RegistrationDate.UTC())
	assert.Equal(t, 1, got.Progress.CurrentStep)
	assert.False(t, got.Progress.Completed)
}

func TestPostgresCreateDuplicate(t *testing.T) {
	store := companystore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()

	c := models.NewCompany(domain.NewCompanyID(), time.Now())
	require.NoError(t, store.Create(ctx, c))
	assert.ErrorIs(t, store.Create(ctx, c), sentinel.ErrConflict)
}

func TestPostgresFindUnknown(t *testing.T) {
	store := companystore.NewPostgres(containers.NewPostgres(t))

	_, err := store.FindByID(context.Background(), domain.NewCompanyID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresExecutePersistsMutation(t *testing.T) {
	store := companystore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()
	now := time.Now()

	c := models.NewCompany(domain.NewCompanyID(), now)
	require.NoError(t, store.Create(ctx, c))

	updated, err := store.Execute(ctx, c.ID, nil, func(c *models.Company) {
		c.LegalName = "Executed LLC"
		c.MarkStepDone(1, now.Add(time.Minute))
	})
	require.NoError(t, err)
	assert.Equal(t, "Executed LLC", updated.LegalName)
	assert.True(t, updated.Progress.CompanyInfoDone)
	assert.Equal(t, 2, updated.Progress.CurrentStep)

	got, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Executed LLC", got.LegalName)
	assert.True(t, got.Progress.CompanyInfoDone)
}

func TestPostgresExecuteValidateFailureLeavesRowUntouched(t *testing.T) {
	store := companystore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()

	c := models.NewCompany(domain.NewCompanyID(), time.Now())
	c.LegalName = "Untouched LLC"
	require.NoError(t, store.Create(ctx, c))

	_, err := store.Execute(ctx, c.ID,
		func(*models.Company) error {
			return dErrors.New(dErrors.CodeConflict, "registration already submitted")
		},
		func(c *models.Company) { c.LegalName = "Should Not Land" })
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	got, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Untouched LLC", got.LegalName)
}

func TestPostgresListByStatus(t *testing.T) {
	store := companystore.NewPostgres(containers.NewPostgres(t))
	ctx := context.Background()
	now := time.Now()

	pending := models.NewCompany(domain.NewCompanyID(), now)
	require.NoError(t, store.Create(ctx, pending))

	active := models.NewCompany(domain.NewCompanyID(), now)
	require.NoError(t, store.Create(ctx, active))
	_, err := store.Execute(ctx, active.ID,
		func(c *models.Company) error { return c.CanApprove() },
		func(c *models.Company) { c.ApplyApproval(now) })
	require.NoError(t, err)

	listed, err := store.ListByStatus(ctx, domain.CompanyPendingReview)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, pending.ID, listed[0].ID)
}
