package store

import (
	"context"
	"sync"
	"time"

	"beam/internal/subscription"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// InMemory keeps at most one subscription per company, the newest winning,
// which matches the registration flow where re-selecting a plan replaces the
// earlier trial.
type InMemory struct {
	mu   sync.RWMutex
	subs map[domain.CompanyID]*subscription.Subscription
}

func NewInMemory() *InMemory {
	return &InMemory{subs: make(map[domain.CompanyID]*subscription.Subscription)}
}

func (s *InMemory) Upsert(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subs[sub.CompanyID] = &cp
	return nil
}

func (s *InMemory) FindByCompany(_ context.Context, companyID domain.CompanyID) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[companyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

// SetStatus updates the status of a company's subscription.
func (s *InMemory) SetStatus(_ context.Context, companyID domain.CompanyID, status domain.SubscriptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[companyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	sub.Status = status
	return nil
}

// ExpireTrials moves trials whose period ended before now to past-due and
// returns the affected company ids.
func (s *InMemory) ExpireTrials(_ context.Context, now time.Time) ([]domain.CompanyID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []domain.CompanyID
	for companyID, sub := range s.subs {
		if sub.Status == domain.SubscriptionTrial && sub.CurrentPeriodEnd.Before(now) {
			sub.Status = domain.SubscriptionPastDue
			expired = append(expired, companyID)
		}
	}
	return expired, nil
}
