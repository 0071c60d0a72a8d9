package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beam/internal/document"
	"beam/internal/document/blob"
	docstore "beam/internal/document/store"
	"beam/internal/events"
	"beam/internal/plan"
	planstore "beam/internal/plan/store"
	"beam/internal/registration/metrics"
	"beam/internal/registration/models"
	"beam/internal/registration/service"
	companystore "beam/internal/registration/store/company"
	substore "beam/internal/subscription/store"
	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
)

// Shared across tests: promauto registers in the default registry, which
// rejects duplicate metric names.
var testMetrics = metrics.New()

type fixture struct {
	svc       *service.Service
	documents *document.Service
	sink      *events.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	blobs, err := blob.NewDisk(t.TempDir())
	require.NoError(t, err)
	documents := document.NewService(docstore.NewInMemory(), blobs, 10<<20, logger)

	plans := plan.NewService(planstore.NewInMemory())
	require.NoError(t, plans.SeedDefaults(context.Background()))

	sink := events.NewMemory()
	svc := service.NewService(companystore.NewInMemory(), documents, plans, substore.NewInMemory(),
		sink, testMetrics, 14, logger)
	return &fixture{svc: svc, documents: documents, sink: sink}
}

func validCompanyInfo() models.CompanyInfo {
	return models.CompanyInfo{
		LegalName:          "Acme Trading LLC",
		BusinessType:       "LLC",
		RegistrationNumber: "CN-1234567",
		RegistrationDate:   "2020-03-15",
		Email:              "owner@acme.ae",
		Phone:              "+971501234567",
	}
}

func validBusinessDetails() models.BusinessDetails {
	return models.BusinessDetails{
		BusinessActivity:      "General Trading",
		AddressLine1:          "Office 1204, Marina Plaza",
		City:                  "Dubai",
		Emirate:               "Dubai",
		TRN:                   "100123456789012",
		AuthorizedPersonName:  "Sara Khalid",
		AuthorizedPersonTitle: "Managing Director",
		AuthorizedPersonEmail: "sara@acme.ae",
		AuthorizedPersonPhone: "+971501234568",
	}
}

func uploadRequiredDocuments(t *testing.T, f *fixture, id domain.CompanyID) {
	t.Helper()
	for _, docType := range domain.RequiredDocumentTypes() {
		_, err := f.documents.SaveUpload(context.Background(), document.Upload{
			CompanyID: id,
			Type:      docType,
			FileName:  "scan.pdf",
			MimeType:  "application/pdf",
			Content:   []byte("%PDF-1.4 test"),
		})
		require.NoError(t, err)
	}
}

func completeAllSteps(t *testing.T, f *fixture, id domain.CompanyID) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SubmitCompanyInfo(ctx, id, validCompanyInfo())
	require.NoError(t, err)
	_, err = f.svc.SubmitBusinessDetails(ctx, id, validBusinessDetails())
	require.NoError(t, err)
	uploadRequiredDocuments(t, f, id)
	_, err = f.svc.CompleteDocuments(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.SelectPlan(ctx, id, models.PlanSelection{PlanID: "plan_starter"})
	require.NoError(t, err)
}

func TestInitCreatesSession(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Init(context.Background())
	require.NoError(t, err)

	assert.Contains(t, string(c.ID), "co_")
	assert.Equal(t, domain.CompanyPendingReview, c.Status)
	assert.Equal(t, 1, c.Progress.CurrentStep)
	assert.Len(t, f.sink.OfType(events.TypeRegistrationInitialized), 1)
}

func TestSubmitCompanyInfoAdvancesProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	updated, err := f.svc.SubmitCompanyInfo(ctx, c.ID, validCompanyInfo())
	require.NoError(t, err)

	assert.Equal(t, "Acme Trading LLC", updated.LegalName)
	assert.True(t, updated.Progress.CompanyInfoDone)
	assert.Equal(t, 2, updated.Progress.CurrentStep)
}

func TestSubmitCompanyInfoRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	req := validCompanyInfo()
	req.LegalName = "A"
	_, err = f.svc.SubmitCompanyInfo(ctx, c.ID, req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Contains(t, err.Error(), "LegalName")
}

func TestResubmitStepOverwritesValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitCompanyInfo(ctx, c.ID, validCompanyInfo())
	require.NoError(t, err)

	req := validCompanyInfo()
	req.LegalName = "Acme Trading Holdings LLC"
	updated, err := f.svc.SubmitCompanyInfo(ctx, c.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "Acme Trading Holdings LLC", updated.LegalName)
	assert.Equal(t, 2, updated.Progress.CurrentStep)
}

func TestEmailChangeClearsVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)
	_, err = f.svc.SubmitCompanyInfo(ctx, c.ID, validCompanyInfo())
	require.NoError(t, err)

	// Simulate a completed verification, then change the address.
	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, got.EmailVerified)

	req := validCompanyInfo()
	req.Email = "billing@acme.ae"
	updated, err := f.svc.SubmitCompanyInfo(ctx, c.ID, req)
	require.NoError(t, err)
	assert.False(t, updated.EmailVerified)
	assert.Equal(t, "billing@acme.ae", updated.Email)
}

func TestSubmitBusinessDetailsRejectsBadTRN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	req := validBusinessDetails()
	req.TRN = "12345"
	_, err = f.svc.SubmitBusinessDetails(ctx, c.ID, req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCompleteDocumentsRequiresUploads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	_, err = f.svc.CompleteDocuments(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	assert.Contains(t, err.Error(), string(domain.DocBusinessLicense))
}

func TestCompleteDocumentsWithRequiredTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	uploadRequiredDocuments(t, f, c.ID)
	updated, err := f.svc.CompleteDocuments(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, updated.Progress.DocumentsDone)
}

func TestSelectPlanStartsTrial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	sub, err := f.svc.SelectPlan(ctx, c.ID, models.PlanSelection{PlanID: "plan_professional", BillingCycle: "yearly"})
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionTrial, sub.Status)
	assert.Equal(t, domain.PlanID("plan_professional"), sub.PlanID)
	assert.Equal(t, domain.BillingYearly, sub.BillingCycle)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 14), sub.CurrentPeriodEnd, time.Minute)
}

func TestSelectPlanUnknownPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	_, err = f.svc.SelectPlan(ctx, c.ID, models.PlanSelection{PlanID: "plan_unknown"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestReselectPlanReplacesTrial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	_, err = f.svc.SelectPlan(ctx, c.ID, models.PlanSelection{PlanID: "plan_starter"})
	require.NoError(t, err)
	_, err = f.svc.SelectPlan(ctx, c.ID, models.PlanSelection{PlanID: "plan_enterprise"})
	require.NoError(t, err)

	sub, err := f.svc.Subscription(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanID("plan_enterprise"), sub.PlanID)
}

func TestFinalizeRequiresAllSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitCompanyInfo(ctx, c.ID, validCompanyInfo())
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestFinalizeHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	completeAllSteps(t, f, c.ID)
	finalized, err := f.svc.Finalize(ctx, c.ID)
	require.NoError(t, err)

	assert.True(t, finalized.Progress.Completed)
	assert.Equal(t, domain.CompanyPendingReview, finalized.Status)
	assert.Len(t, f.sink.OfType(events.TypeRegistrationFinalized), 1)
}

func TestNoWritesAfterFinalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.Init(ctx)
	require.NoError(t, err)

	completeAllSteps(t, f, c.ID)
	_, err = f.svc.Finalize(ctx, c.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitCompanyInfo(ctx, c.ID, validCompanyInfo())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = f.svc.Finalize(ctx, c.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUnknownCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "co_deadbeef")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
