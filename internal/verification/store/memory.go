package store

import (
	"context"
	"sync"
	"time"

	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// InMemory tracks verification token usage and resend throttling without an
// external dependency. Entries are pruned lazily on access.
type InMemory struct {
	mu       sync.Mutex
	consumed map[string]time.Time         // jti -> expiry of the consumption record
	lastSend map[domain.CompanyID]time.Time // company -> when the throttle window opened
}

func NewInMemory() *InMemory {
	return &InMemory{
		consumed: make(map[string]time.Time),
		lastSend: make(map[domain.CompanyID]time.Time),
	}
}

// AllowSend opens a resend window for the company. Returns ErrInvalidState
// while a previous window is still open.
func (s *InMemory) AllowSend(_ context.Context, id domain.CompanyID, window time.Duration, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if opened, ok := s.lastSend[id]; ok && now.Sub(opened) < window {
		return sentinel.ErrInvalidState
	}
	s.lastSend[id] = now
	return nil
}

// Consume marks a token as used. A second call with the same jti before ttl
// elapses returns ErrAlreadyUsed.
func (s *InMemory) Consume(_ context.Context, jti string, ttl time.Duration, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.consumed[jti]; ok && now.Before(expiry) {
		return sentinel.ErrAlreadyUsed
	}
	s.consumed[jti] = now.Add(ttl)
	return nil
}
