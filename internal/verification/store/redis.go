package store

import (
	"context"
	"fmt"
	"time"

	platformredis "beam/internal/platform/redis"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// Redis backs verification token state with TTL keys, so single-use and
// throttle guarantees hold across API replicas.
type Redis struct {
	client *platformredis.Client
}

func NewRedis(client *platformredis.Client) *Redis {
	return &Redis{client: client}
}

func sendKey(id domain.CompanyID) string { return fmt.Sprintf("beam:verify:send:%s", id) }
func usedKey(jti string) string          { return fmt.Sprintf("beam:verify:used:%s", jti) }

// AllowSend opens a resend window via SETNX. Returns ErrInvalidState while a
// previous window is still open.
func (s *Redis) AllowSend(ctx context.Context, id domain.CompanyID, window time.Duration, _ time.Time) error {
	ok, err := s.client.SetNX(ctx, sendKey(id), "1", window).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return sentinel.ErrInvalidState
	}
	return nil
}

// Consume marks a jti as used for the remaining token lifetime. SETNX makes
// the check-and-set atomic across replicas.
func (s *Redis) Consume(ctx context.Context, jti string, ttl time.Duration, _ time.Time) error {
	ok, err := s.client.SetNX(ctx, usedKey(jti), "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}
