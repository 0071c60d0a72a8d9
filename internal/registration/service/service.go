// Package service implements the registration wizard's server-side flow: one
// session per company, five steps, each resubmittable until finalize.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"beam/internal/document"
	"beam/internal/events"
	"beam/internal/plan"
	"beam/internal/registration/metrics"
	"beam/internal/registration/models"
	"beam/internal/subscription"
	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/sentinel"
	"beam/pkg/requestcontext"
)

// CompanyStore persists registration sessions.
type CompanyStore interface {
	Create(ctx context.Context, c *models.Company) error
	FindByID(ctx context.Context, id domain.CompanyID) (*models.Company, error)
	Execute(ctx context.Context, id domain.CompanyID,
		validate func(*models.Company) error, apply func(*models.Company)) (*models.Company, error)
}

// Documents is the slice of the document module the wizard needs: uploads
// and listing during step 3, plus the required-types check that closes it.
type Documents interface {
	SaveUpload(ctx context.Context, up document.Upload) (*document.Document, error)
	List(ctx context.Context, companyID domain.CompanyID) ([]*document.Document, error)
	Delete(ctx context.Context, companyID domain.CompanyID, id domain.DocumentID) error
	HasRequiredTypes(ctx context.Context, companyID domain.CompanyID) (bool, []domain.DocumentType, error)
}

// Plans resolves the selected plan at step 4.
type Plans interface {
	GetActive(ctx context.Context, id domain.PlanID) (*plan.Plan, error)
}

// SubscriptionStore persists the trial created at plan selection.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *subscription.Subscription) error
	FindByCompany(ctx context.Context, companyID domain.CompanyID) (*subscription.Subscription, error)
}

// Service orchestrates the registration steps.
type Service struct {
	companies CompanyStore
	documents Documents
	plans     Plans
	subs      SubscriptionStore
	events    events.Publisher
	metrics   *metrics.Metrics
	trialDays int
	logger    *slog.Logger
}

func NewService(companies CompanyStore, documents Documents, plans Plans, subs SubscriptionStore,
	publisher events.Publisher, m *metrics.Metrics, trialDays int, logger *slog.Logger) *Service {
	return &Service{
		companies: companies,
		documents: documents,
		plans:     plans,
		subs:      subs,
		events:    publisher,
		metrics:   m,
		trialDays: trialDays,
		logger:    logger,
	}
}

// Init creates a fresh registration session and returns it.
func (s *Service) Init(ctx context.Context) (*models.Company, error) {
	now := requestcontext.Now(ctx)
	c := models.NewCompany(domain.NewCompanyID(), now)
	if err := s.companies.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create registration session")
	}

	s.metrics.SessionsInitialized.Inc()
	s.publish(ctx, events.TypeRegistrationInitialized, c.ID, nil)
	s.logger.InfoContext(ctx, "registration initialized", "company_id", c.ID)
	return c, nil
}

// SubmitCompanyInfo stores the step 1 payload. Resubmitting overwrites the
// previous values; changing the email clears any earlier verification.
func (s *Service) SubmitCompanyInfo(ctx context.Context, id domain.CompanyID, req models.CompanyInfo) (*models.Company, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	var regDate *time.Time
	if req.RegistrationDate != "" {
		d, err := time.Parse("2006-01-02", req.RegistrationDate)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "registration_date must be YYYY-MM-DD")
		}
		regDate = &d
	}

	now := requestcontext.Now(ctx)
	c, err := s.companies.Execute(ctx, id, notSubmitted, func(c *models.Company) {
		if c.Email != req.Email {
			c.EmailVerified = false
		}
		c.LegalName = req.LegalName
		c.BusinessType = req.BusinessType
		c.RegistrationNumber = req.RegistrationNumber
		c.RegistrationDate = regDate
		c.Email = req.Email
		c.Phone = req.Phone
		c.Website = req.Website
		c.MarkStepDone(1, now)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.stepCompleted(ctx, id, 1)
	return c, nil
}

// SubmitBusinessDetails stores the step 2 payload.
func (s *Service) SubmitBusinessDetails(ctx context.Context, id domain.CompanyID, req models.BusinessDetails) (*models.Company, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	if req.TRN != "" && !domain.ValidTRN(req.TRN) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "trn must be exactly 15 digits")
	}

	now := requestcontext.Now(ctx)
	c, err := s.companies.Execute(ctx, id, notSubmitted, func(c *models.Company) {
		c.BusinessActivity = req.BusinessActivity
		c.AddressLine1 = req.AddressLine1
		c.AddressLine2 = req.AddressLine2
		c.City = req.City
		c.Emirate = req.Emirate
		c.POBox = req.POBox
		c.TRN = req.TRN
		c.AuthorizedPersonName = req.AuthorizedPersonName
		c.AuthorizedPersonTitle = req.AuthorizedPersonTitle
		c.AuthorizedPersonEmail = req.AuthorizedPersonEmail
		c.AuthorizedPersonPhone = req.AuthorizedPersonPhone
		c.MarkStepDone(2, now)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.stepCompleted(ctx, id, 2)
	return c, nil
}

// UploadDocument stores one step 3 document for the session. Uploads are
// rejected once the registration has been submitted.
func (s *Service) UploadDocument(ctx context.Context, id domain.CompanyID, up document.Upload) (*document.Document, error) {
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := notSubmitted(c); err != nil {
		return nil, err
	}

	up.CompanyID = id
	doc, err := s.documents.SaveUpload(ctx, up)
	if err != nil {
		return nil, err
	}

	s.metrics.DocumentsUploaded.Inc()
	s.publish(ctx, events.TypeDocumentUploaded, id, map[string]string{
		"document_id":   string(doc.ID),
		"document_type": string(doc.Type),
	})
	return doc, nil
}

// ListDocuments returns the session's uploads, newest first.
func (s *Service) ListDocuments(ctx context.Context, id domain.CompanyID) ([]*document.Document, error) {
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		return nil, translate(err)
	}
	return s.documents.List(ctx, id)
}

// DeleteDocument removes one upload. Blocked once the registration has been
// submitted, like every other write.
func (s *Service) DeleteDocument(ctx context.Context, id domain.CompanyID, docID domain.DocumentID) error {
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := notSubmitted(c); err != nil {
		return err
	}
	return s.documents.Delete(ctx, id, docID)
}

// CompleteDocuments closes step 3 once every required document type has been
// uploaded. The upload itself goes through the document module; this endpoint
// only records that the step is done.
func (s *Service) CompleteDocuments(ctx context.Context, id domain.CompanyID) (*models.Company, error) {
	ok, missing, err := s.documents.HasRequiredTypes(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list documents")
	}
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "missing required documents: %s", joinTypes(missing))
	}

	now := requestcontext.Now(ctx)
	c, err := s.companies.Execute(ctx, id, notSubmitted, func(c *models.Company) {
		c.MarkStepDone(3, now)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.stepCompleted(ctx, id, 3)
	return c, nil
}

// SelectPlan stores the step 4 choice and starts (or replaces) the trial
// subscription. Only one plan is ever associated with a session; reselecting
// swaps the trial to the new plan.
func (s *Service) SelectPlan(ctx context.Context, id domain.CompanyID, req models.PlanSelection) (*subscription.Subscription, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	planID, err := domain.ParsePlanID(req.PlanID)
	if err != nil {
		return nil, err
	}
	cycle, err := domain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		return nil, err
	}

	p, err := s.plans.GetActive(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	sub := subscription.NewTrial(id, p.ID, cycle, now, s.trialDays)

	if _, err := s.companies.Execute(ctx, id, notSubmitted, func(c *models.Company) {
		c.MarkStepDone(4, now)
	}); err != nil {
		return nil, translate(err)
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store subscription")
	}

	s.stepCompleted(ctx, id, 4)
	return sub, nil
}

// Finalize submits the full registration for review. All four prior steps
// must be complete; afterwards the session is read-only.
func (s *Service) Finalize(ctx context.Context, id domain.CompanyID) (*models.Company, error) {
	now := requestcontext.Now(ctx)
	c, err := s.companies.Execute(ctx, id,
		func(c *models.Company) error { return c.CanFinalize() },
		func(c *models.Company) { c.ApplyFinalize(now) })
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeBadRequest) {
			s.metrics.FinalizeRejected.Inc()
		}
		return nil, translate(err)
	}

	s.metrics.Finalized.Inc()
	s.publish(ctx, events.TypeRegistrationFinalized, id, map[string]string{
		"status": string(c.Status),
	})
	s.logger.InfoContext(ctx, "registration finalized", "company_id", id, "status", c.Status)
	return c, nil
}

// Get returns the session, for progress and review reads.
func (s *Service) Get(ctx context.Context, id domain.CompanyID) (*models.Company, error) {
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// Subscription returns the trial created at step 4, if any.
func (s *Service) Subscription(ctx context.Context, id domain.CompanyID) (*subscription.Subscription, error) {
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		return nil, translate(err)
	}
	sub, err := s.subs.FindByCompany(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no subscription for company")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load subscription")
	}
	return sub, nil
}

func (s *Service) stepCompleted(ctx context.Context, id domain.CompanyID, step int) {
	s.metrics.StepsCompleted.WithLabelValues(strconv.Itoa(step)).Inc()
	s.publish(ctx, events.TypeStepCompleted, id, map[string]string{
		"step": strconv.Itoa(step),
	})
	s.logger.InfoContext(ctx, "step completed", "company_id", id, "step", step)
}

func (s *Service) publish(ctx context.Context, eventType string, id domain.CompanyID, details map[string]string) {
	browser := requestcontext.ClientBrowser(ctx)
	s.events.Publish(ctx, events.Event{
		Type:      eventType,
		CompanyID: id,
		At:        requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Browser:   browser.Name,
		OS:        browser.OS,
		Details:   details,
	})
}

// notSubmitted is the shared precondition for every step: once finalized, the
// session rejects further writes.
func notSubmitted(c *models.Company) error {
	if c.Progress.Completed {
		return dErrors.New(dErrors.CodeConflict, "registration already submitted")
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "company not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "conflicting registration state")
	default:
		return err
	}
}

func joinTypes(types []domain.DocumentType) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += string(t)
	}
	return out
}
