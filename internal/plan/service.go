package plan

import (
	"context"
	"errors"

	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/sentinel"
	"beam/pkg/requestcontext"
)

// Store persists the plan catalog.
type Store interface {
	Seed(ctx context.Context, plans []*Plan) error
	ListActive(ctx context.Context) ([]*Plan, error)
	FindByID(ctx context.Context, id domain.PlanID) (*Plan, error)
}

// Service exposes the public plan catalog.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// SeedDefaults inserts the default catalog if missing. Called at startup.
func (s *Service) SeedDefaults(ctx context.Context) error {
	return s.store.Seed(ctx, Defaults(requestcontext.Now(ctx)))
}

// List returns the active catalog ordered by monthly price.
func (s *Service) List(ctx context.Context) ([]*Plan, error) {
	plans, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list plans")
	}
	return plans, nil
}

// Get returns one plan by id.
func (s *Service) Get(ctx context.Context, id domain.PlanID) (*Plan, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "plan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load plan")
	}
	return p, nil
}

// GetActive returns one plan and rejects inactive ones. Used at step 4 so a
// retired plan cannot be selected mid-registration.
func (s *Service) GetActive(ctx context.Context, id domain.PlanID) (*Plan, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, dErrors.New(dErrors.CodeNotFound, "plan not found or inactive")
	}
	return p, nil
}
