package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"beam/internal/events"
	"beam/internal/registration/models"
	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/sentinel"
	"beam/pkg/requestcontext"
)

// CompanyStore is the slice of the company store the verification flow needs.
type CompanyStore interface {
	FindByID(ctx context.Context, id domain.CompanyID) (*models.Company, error)
	Execute(ctx context.Context, id domain.CompanyID,
		validate func(*models.Company) error, apply func(*models.Company)) (*models.Company, error)
}

// TokenStore enforces single use and resend throttling for issued tokens.
type TokenStore interface {
	AllowSend(ctx context.Context, id domain.CompanyID, window time.Duration, now time.Time) error
	Consume(ctx context.Context, jti string, ttl time.Duration, now time.Time) error
}

// Service sends verification links and consumes them.
type Service struct {
	companies CompanyStore
	tokens    TokenStore
	issuer    *TokenIssuer
	sender    Sender
	events    events.Publisher
	baseURL   string
	resendIn  time.Duration
	logger    *slog.Logger
}

func NewService(companies CompanyStore, tokens TokenStore, issuer *TokenIssuer, sender Sender,
	publisher events.Publisher, baseURL string, resendIn time.Duration, logger *slog.Logger) *Service {
	return &Service{
		companies: companies,
		tokens:    tokens,
		issuer:    issuer,
		sender:    sender,
		events:    publisher,
		baseURL:   baseURL,
		resendIn:  resendIn,
		logger:    logger,
	}
}

// Send issues a verification token for the company's registered email and
// delivers the link. Throttled per company so a stuck retry button cannot
// flood the mailbox.
func (s *Service) Send(ctx context.Context, id domain.CompanyID) error {
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "company not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load company")
	}
	if c.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "company has no email on file; submit company info first")
	}
	if c.EmailVerified {
		return dErrors.New(dErrors.CodeConflict, "email already verified")
	}

	now := requestcontext.Now(ctx)
	if err := s.tokens.AllowSend(ctx, id, s.resendIn, now); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeConflict, "verification email recently sent; try again later")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "verification token store")
	}

	token, _, err := s.issuer.Issue(id, c.Email, now)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "issue verification token")
	}

	link := fmt.Sprintf("%s/register/verify/%s", s.baseURL, token)
	if err := s.sender.Send(ctx, c.Email, link); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "send verification email")
	}

	browser := requestcontext.ClientBrowser(ctx)
	s.events.Publish(ctx, events.Event{
		Type:      events.TypeVerificationSent,
		CompanyID: id,
		At:        now,
		RequestID: requestcontext.RequestID(ctx),
		Browser:   browser.Name,
		OS:        browser.OS,
	})

	s.logger.InfoContext(ctx, "verification email sent", "company_id", id)
	return nil
}

// Verify consumes a token and marks the company's email verified. The token
// names the company, so the link carries no separate id. Tokens are single
// use: replaying a link that already verified returns a conflict.
func (s *Service) Verify(ctx context.Context, token string) (*models.Company, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return nil, err
	}
	id, err := domain.ParseCompanyID(claims.CompanyID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid verification token claims")
	}

	now := requestcontext.Now(ctx)
	if err := s.tokens.Consume(ctx, claims.ID, s.issuer.TTL(), now); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "verification link already used")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification token store")
	}

	c, err := s.companies.Execute(ctx, id,
		func(c *models.Company) error {
			if c.Email != claims.Email {
				return dErrors.New(dErrors.CodeConflict, "email changed since the verification link was sent")
			}
			return nil
		},
		func(c *models.Company) {
			c.EmailVerified = true
			c.UpdatedAt = now
		})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
		}
		return nil, err
	}

	s.events.Publish(ctx, events.Event{
		Type:      events.TypeEmailVerified,
		CompanyID: id,
		At:        now,
		RequestID: requestcontext.RequestID(ctx),
	})

	s.logger.InfoContext(ctx, "email verified", "company_id", id)
	return c, nil
}
