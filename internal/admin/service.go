// Package admin implements the review queue: approving or rejecting
// registrations that have been submitted.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"beam/internal/events"
	"beam/internal/registration/models"
	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/sentinel"
	"beam/pkg/requestcontext"
)

// CompanyStore is the slice of the company store the review queue needs.
type CompanyStore interface {
	FindByID(ctx context.Context, id domain.CompanyID) (*models.Company, error)
	ListByStatus(ctx context.Context, status domain.CompanyStatus) ([]*models.Company, error)
	Execute(ctx context.Context, id domain.CompanyID,
		validate func(*models.Company) error, apply func(*models.Company)) (*models.Company, error)
}

// SubscriptionStore flips the trial when the review lands.
type SubscriptionStore interface {
	SetStatus(ctx context.Context, companyID domain.CompanyID, status domain.SubscriptionStatus) error
}

// Service handles the review queue.
type Service struct {
	companies CompanyStore
	subs      SubscriptionStore
	events    events.Publisher
	logger    *slog.Logger
}

func NewService(companies CompanyStore, subs SubscriptionStore, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{companies: companies, subs: subs, events: publisher, logger: logger}
}

// ListPending returns submitted registrations awaiting review, oldest first.
// Sessions still mid-wizard share the pending status but are excluded until
// they finalize.
func (s *Service) ListPending(ctx context.Context) ([]*models.Company, error) {
	all, err := s.companies.ListByStatus(ctx, domain.CompanyPendingReview)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pending companies")
	}
	pending := make([]*models.Company, 0, len(all))
	for _, c := range all {
		if c.Progress.Completed {
			pending = append(pending, c)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].UpdatedAt.Before(pending[j].UpdatedAt)
	})
	return pending, nil
}

// Approve activates the company and its trial subscription.
func (s *Service) Approve(ctx context.Context, id domain.CompanyID) (*models.Company, error) {
	now := requestcontext.Now(ctx)
	c, err := s.companies.Execute(ctx, id,
		func(c *models.Company) error {
			if !c.Progress.Completed {
				return dErrors.New(dErrors.CodeConflict, "registration has not been submitted")
			}
			return c.CanApprove()
		},
		func(c *models.Company) { c.ApplyApproval(now) })
	if err != nil {
		return nil, translate(err)
	}

	// The trial keeps running if activation of the subscription fails; the
	// sweeper will surface it as past-due rather than blocking the approval.
	if err := s.subs.SetStatus(ctx, id, domain.SubscriptionActive); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "activate subscription failed", "company_id", id, "error", err)
	}

	s.events.Publish(ctx, events.Event{
		Type:      events.TypeCompanyApproved,
		CompanyID: id,
		At:        now,
		RequestID: requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "company approved", "company_id", id)
	return c, nil
}

// Reject marks the company rejected. The reason is recorded on the event
// stream and returned to the caller; it is not part of the company record.
func (s *Service) Reject(ctx context.Context, id domain.CompanyID, reason string) (*models.Company, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rejection reason is required")
	}

	now := requestcontext.Now(ctx)
	c, err := s.companies.Execute(ctx, id,
		func(c *models.Company) error {
			if !c.Progress.Completed {
				return dErrors.New(dErrors.CodeConflict, "registration has not been submitted")
			}
			return c.CanReject()
		},
		func(c *models.Company) { c.ApplyRejection(now) })
	if err != nil {
		return nil, translate(err)
	}

	if err := s.subs.SetStatus(ctx, id, domain.SubscriptionCanceled); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "cancel subscription failed", "company_id", id, "error", err)
	}

	s.events.Publish(ctx, events.Event{
		Type:      events.TypeCompanyRejected,
		CompanyID: id,
		At:        now,
		RequestID: requestcontext.RequestID(ctx),
		Details:   map[string]string{"reason": reason},
	})
	s.logger.InfoContext(ctx, "company rejected", "company_id", id, "reason", reason)
	return c, nil
}

func translate(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "company not found")
	}
	return err
}
