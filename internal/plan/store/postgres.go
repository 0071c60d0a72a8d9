package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"beam/internal/plan"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// Schema creates the subscription_plans table.
const Schema = `
CREATE TABLE IF NOT EXISTS subscription_plans (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	price_monthly DOUBLE PRECISION NOT NULL DEFAULT 0,
	price_yearly DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_invoices_per_month INT,
	max_users INT NOT NULL DEFAULT 1,
	max_pos_devices INT NOT NULL DEFAULT 0,
	allow_api_access BOOLEAN NOT NULL DEFAULT TRUE,
	allow_branding BOOLEAN NOT NULL DEFAULT FALSE,
	allow_multi_currency BOOLEAN NOT NULL DEFAULT FALSE,
	priority_support BOOLEAN NOT NULL DEFAULT FALSE,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);
`

// Postgres persists the plan catalog in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const planColumns = `id, name, description, price_monthly, price_yearly,
	max_invoices_per_month, max_users, max_pos_devices, allow_api_access,
	allow_branding, allow_multi_currency, priority_support, active, created_at`

func (s *Postgres) Seed(ctx context.Context, plans []*plan.Plan) error {
	for _, p := range plans {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO subscription_plans (`+planColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (id) DO NOTHING`,
			string(p.ID), p.Name, p.Description, p.PriceMonthly, p.PriceYearly,
			nullInt(p.MaxInvoicesPerMonth), p.MaxUsers, p.MaxPOSDevices, p.AllowAPIAccess,
			p.AllowBranding, p.AllowMultiCurrency, p.PrioritySupport, p.Active, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed plan %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Postgres) ListActive(ctx context.Context) ([]*plan.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE active ORDER BY price_monthly`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []*plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) FindByID(ctx context.Context, id domain.PlanID) (*plan.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, string(id))
	return scanPlan(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*plan.Plan, error) {
	var p plan.Plan
	var id string
	var description sql.NullString
	var maxInvoices sql.NullInt64

	err := row.Scan(&id, &p.Name, &description, &p.PriceMonthly, &p.PriceYearly,
		&maxInvoices, &p.MaxUsers, &p.MaxPOSDevices, &p.AllowAPIAccess,
		&p.AllowBranding, &p.AllowMultiCurrency, &p.PrioritySupport, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	p.ID = domain.PlanID(id)
	p.Description = description.String
	if maxInvoices.Valid {
		n := int(maxInvoices.Int64)
		p.MaxInvoicesPerMonth = &n
	}
	return &p, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
