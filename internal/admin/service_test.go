package admin_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beam/internal/admin"
	"beam/internal/events"
	"beam/internal/registration/models"
	companystore "beam/internal/registration/store/company"
	"beam/internal/subscription"
	substore "beam/internal/subscription/store"
	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
)

type fixture struct {
	svc       *admin.Service
	companies *companystore.InMemory
	subs      *substore.InMemory
	sink      *events.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	companies := companystore.NewInMemory()
	subs := substore.NewInMemory()
	sink := events.NewMemory()
	svc := admin.NewService(companies, subs, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &fixture{svc: svc, companies: companies, subs: subs, sink: sink}
}

func seedSubmitted(t *testing.T, f *fixture) *models.Company {
	t.Helper()
	now := time.Now()
	c := models.NewCompany(domain.NewCompanyID(), now)
	c.LegalName = "Acme Trading LLC"
	c.MarkStepDone(1, now)
	c.MarkStepDone(2, now)
	c.MarkStepDone(3, now)
	c.MarkStepDone(4, now)
	c.ApplyFinalize(now)
	require.NoError(t, f.companies.Create(context.Background(), c))
	require.NoError(t, f.subs.Upsert(context.Background(),
		subscription.NewTrial(c.ID, "plan_starter", domain.BillingMonthly, now, 14)))
	return c
}

func TestListPendingExcludesMidWizard(t *testing.T) {
	f := newFixture(t)
	submitted := seedSubmitted(t, f)

	// A session still mid-wizard shares the pending status.
	inProgress := models.NewCompany(domain.NewCompanyID(), time.Now())
	require.NoError(t, f.companies.Create(context.Background(), inProgress))

	pending, err := f.svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.ID, pending[0].ID)
}

func TestApproveActivatesCompanyAndSubscription(t *testing.T) {
	f := newFixture(t)
	c := seedSubmitted(t, f)
	ctx := context.Background()

	approved, err := f.svc.Approve(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CompanyActive, approved.Status)

	sub, err := f.subs.FindByCompany(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, sub.Status)

	require.Len(t, f.sink.OfType(events.TypeCompanyApproved), 1)
}

func TestApproveUnsubmitted(t *testing.T) {
	f := newFixture(t)
	c := models.NewCompany(domain.NewCompanyID(), time.Now())
	require.NoError(t, f.companies.Create(context.Background(), c))

	_, err := f.svc.Approve(context.Background(), c.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestApproveTwice(t *testing.T) {
	f := newFixture(t)
	c := seedSubmitted(t, f)
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, c.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRejectRecordsReason(t *testing.T) {
	f := newFixture(t)
	c := seedSubmitted(t, f)
	ctx := context.Background()

	rejected, err := f.svc.Reject(ctx, c.ID, "trade license expired")
	require.NoError(t, err)
	assert.Equal(t, domain.CompanyRejected, rejected.Status)

	sub, err := f.subs.FindByCompany(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCanceled, sub.Status)

	evs := f.sink.OfType(events.TypeCompanyRejected)
	require.Len(t, evs, 1)
	assert.Equal(t, "trade license expired", evs[0].Details["reason"])
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	c := seedSubmitted(t, f)

	_, err := f.svc.Reject(context.Background(), c.ID, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestApproveUnknownCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(context.Background(), "co_deadbeef")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
