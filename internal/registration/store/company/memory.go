package company

import (
	"context"
	"sync"

	"beam/internal/registration/models"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// InMemory keeps registration sessions in a map. It is the default store for
// local development and the fake used by service and handler tests.
type InMemory struct {
	mu        sync.RWMutex
	companies map[domain.CompanyID]*models.Company
}

func NewInMemory() *InMemory {
	return &InMemory{companies: make(map[domain.CompanyID]*models.Company)}
}

func (s *InMemory) Create(_ context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CompanyID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// Execute runs validate-then-apply while holding the store lock, so status
// and progress transitions cannot interleave with concurrent submissions.
func (s *InMemory) Execute(_ context.Context, id domain.CompanyID,
	validate func(*models.Company) error, apply func(*models.Company)) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(c); err != nil {
			return nil, err
		}
	}
	if apply != nil {
		apply(c)
	}
	cp := *c
	return &cp, nil
}

func (s *InMemory) ListByStatus(_ context.Context, status domain.CompanyStatus) ([]*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Company
	for _, c := range s.companies {
		if c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
