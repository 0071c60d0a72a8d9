package store

import (
	"context"
	"sort"
	"sync"

	"beam/internal/plan"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// InMemory keeps the plan catalog in a map.
type InMemory struct {
	mu    sync.RWMutex
	plans map[domain.PlanID]*plan.Plan
}

func NewInMemory() *InMemory {
	return &InMemory{plans: make(map[domain.PlanID]*plan.Plan)}
}

// Seed inserts plans that are not already present.
func (s *InMemory) Seed(_ context.Context, plans []*plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range plans {
		if _, ok := s.plans[p.ID]; ok {
			continue
		}
		cp := *p
		s.plans[p.ID] = &cp
	}
	return nil
}

func (s *InMemory) ListActive(_ context.Context) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*plan.Plan
	for _, p := range s.plans {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceMonthly < out[j].PriceMonthly })
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.PlanID) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
