package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"beam/internal/subscription"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// Schema creates the company_subscriptions table. One row per company; a new
// plan selection replaces the previous trial.
const Schema = `
CREATE TABLE IF NOT EXISTS company_subscriptions (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL UNIQUE REFERENCES companies (id),
	plan_id TEXT NOT NULL REFERENCES subscription_plans (id),
	status TEXT NOT NULL,
	billing_cycle TEXT NOT NULL DEFAULT 'monthly',
	current_period_start DATE NOT NULL,
	current_period_end DATE NOT NULL,
	invoices_this_period INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);
`

// Postgres persists subscriptions in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO company_subscriptions
			(id, company_id, plan_id, status, billing_cycle, current_period_start,
			 current_period_end, invoices_this_period, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (company_id) DO UPDATE SET
			id = EXCLUDED.id,
			plan_id = EXCLUDED.plan_id,
			status = EXCLUDED.status,
			billing_cycle = EXCLUDED.billing_cycle,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			invoices_this_period = EXCLUDED.invoices_this_period,
			created_at = EXCLUDED.created_at`,
		string(sub.ID), string(sub.CompanyID), string(sub.PlanID), string(sub.Status),
		string(sub.BillingCycle), sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
		sub.InvoicesThisPeriod, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *Postgres) FindByCompany(ctx context.Context, companyID domain.CompanyID) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	var id, company, planID, status, cycle string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, plan_id, status, billing_cycle, current_period_start,
		       current_period_end, invoices_this_period, created_at
		FROM company_subscriptions WHERE company_id = $1`, string(companyID)).
		Scan(&id, &company, &planID, &status, &cycle, &sub.CurrentPeriodStart,
			&sub.CurrentPeriodEnd, &sub.InvoicesThisPeriod, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	sub.ID = domain.SubscriptionID(id)
	sub.CompanyID = domain.CompanyID(company)
	sub.PlanID = domain.PlanID(planID)
	sub.Status = domain.SubscriptionStatus(status)
	sub.BillingCycle = domain.BillingCycle(cycle)
	return &sub, nil
}

func (s *Postgres) SetStatus(ctx context.Context, companyID domain.CompanyID, status domain.SubscriptionStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE company_subscriptions SET status = $2 WHERE company_id = $1`,
		string(companyID), string(status))
	if err != nil {
		return fmt.Errorf("set subscription status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ExpireTrials(ctx context.Context, now time.Time) ([]domain.CompanyID, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE company_subscriptions
		SET status = $1
		WHERE status = $2 AND current_period_end < $3
		RETURNING company_id`,
		string(domain.SubscriptionPastDue), string(domain.SubscriptionTrial), now)
	if err != nil {
		return nil, fmt.Errorf("expire trials: %w", err)
	}
	defer rows.Close()

	var out []domain.CompanyID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired trial: %w", err)
		}
		out = append(out, domain.CompanyID(id))
	}
	return out, rows.Err()
}
