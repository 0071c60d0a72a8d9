package store

import (
	"context"
	"sort"
	"sync"

	"beam/internal/document"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// InMemory keeps document records in a map keyed by document id.
type InMemory struct {
	mu   sync.RWMutex
	docs map[domain.DocumentID]*document.Document
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[domain.DocumentID]*document.Document)}
}

func (s *InMemory) Create(_ context.Context, d *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.docs[d.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, companyID domain.CompanyID, id domain.DocumentID) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok || d.CompanyID != companyID {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemory) ListByCompany(_ context.Context, companyID domain.CompanyID) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*document.Document
	for _, d := range s.docs {
		if d.CompanyID == companyID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, companyID domain.CompanyID, id domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok || d.CompanyID != companyID {
		return sentinel.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
