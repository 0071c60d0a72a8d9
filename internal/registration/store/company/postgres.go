package company

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"beam/internal/registration/models"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// Schema creates the companies table. Progress flags live inline; they are
// 1:1 with the company and always written together with it.
const Schema = `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	country TEXT NOT NULL DEFAULT 'AE',
	status TEXT NOT NULL,
	legal_name TEXT,
	business_type TEXT,
	registration_number TEXT,
	registration_date DATE,
	email TEXT,
	phone TEXT,
	website TEXT,
	business_activity TEXT,
	address_line1 TEXT,
	address_line2 TEXT,
	city TEXT,
	emirate TEXT,
	po_box TEXT,
	trn TEXT,
	authorized_person_name TEXT,
	authorized_person_title TEXT,
	authorized_person_email TEXT,
	authorized_person_phone TEXT,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	current_step INT NOT NULL DEFAULT 1,
	step_company_info BOOLEAN NOT NULL DEFAULT FALSE,
	step_business_details BOOLEAN NOT NULL DEFAULT FALSE,
	step_documents BOOLEAN NOT NULL DEFAULT FALSE,
	step_plan_selection BOOLEAN NOT NULL DEFAULT FALSE,
	step_review BOOLEAN NOT NULL DEFAULT FALSE,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS companies_status_idx ON companies (status);
`

// Postgres persists registration sessions in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const allColumns = `id, country, status, legal_name, business_type, registration_number,
	registration_date, email, phone, website, business_activity, address_line1,
	address_line2, city, emirate, po_box, trn, authorized_person_name,
	authorized_person_title, authorized_person_email, authorized_person_phone,
	email_verified, current_step, step_company_info, step_business_details,
	step_documents, step_plan_selection, step_review, completed, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, c *models.Company) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (`+allColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,
			$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)`,
		insertArgs(c)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.CompanyID) (*models.Company, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+allColumns+` FROM companies WHERE id = $1`, string(id))
	return scanCompany(row)
}

// Execute locks the row FOR UPDATE, runs validate, applies the mutation, and
// writes the full row back in one transaction.
func (s *Postgres) Execute(ctx context.Context, id domain.CompanyID,
	validate func(*models.Company) error, apply func(*models.Company)) (*models.Company, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+allColumns+` FROM companies WHERE id = $1 FOR UPDATE`, string(id))
	c, err := scanCompany(row)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(c); err != nil {
			return nil, err
		}
	}
	if apply != nil {
		apply(c)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE companies SET
			country=$2, status=$3, legal_name=$4, business_type=$5, registration_number=$6,
			registration_date=$7, email=$8, phone=$9, website=$10, business_activity=$11,
			address_line1=$12, address_line2=$13, city=$14, emirate=$15, po_box=$16, trn=$17,
			authorized_person_name=$18, authorized_person_title=$19, authorized_person_email=$20,
			authorized_person_phone=$21, email_verified=$22, current_step=$23,
			step_company_info=$24, step_business_details=$25, step_documents=$26,
			step_plan_selection=$27, step_review=$28, completed=$29, updated_at=$30
		WHERE id=$1`,
		string(c.ID), c.Country, string(c.Status), nullStr(c.LegalName), nullStr(c.BusinessType),
		nullStr(c.RegistrationNumber), nullTime(c.RegistrationDate), nullStr(c.Email), nullStr(c.Phone),
		nullStr(c.Website), nullStr(c.BusinessActivity), nullStr(c.AddressLine1), nullStr(c.AddressLine2),
		nullStr(c.City), nullStr(c.Emirate), nullStr(c.POBox), nullStr(c.TRN),
		nullStr(c.AuthorizedPersonName), nullStr(c.AuthorizedPersonTitle), nullStr(c.AuthorizedPersonEmail),
		nullStr(c.AuthorizedPersonPhone), c.EmailVerified, c.Progress.CurrentStep,
		c.Progress.CompanyInfoDone, c.Progress.BusinessDone, c.Progress.DocumentsDone,
		c.Progress.PlanSelectionDone, c.Progress.ReviewDone, c.Progress.Completed, c.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

func (s *Postgres) ListByStatus(ctx context.Context, status domain.CompanyStatus) ([]*models.Company, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+allColumns+` FROM companies WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(row scanner) (*models.Company, error) {
	var c models.Company
	var legalName, businessType, regNumber, email, phone, website sql.NullString
	var activity, addr1, addr2, city, emirate, poBox, trn sql.NullString
	var apName, apTitle, apEmail, apPhone sql.NullString
	var regDate sql.NullTime
	var id, country, status string

	err := row.Scan(&id, &country, &status, &legalName, &businessType, &regNumber,
		&regDate, &email, &phone, &website, &activity, &addr1, &addr2, &city, &emirate,
		&poBox, &trn, &apName, &apTitle, &apEmail, &apPhone,
		&c.EmailVerified, &c.Progress.CurrentStep, &c.Progress.CompanyInfoDone,
		&c.Progress.BusinessDone, &c.Progress.DocumentsDone, &c.Progress.PlanSelectionDone,
		&c.Progress.ReviewDone, &c.Progress.Completed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}

	c.ID = domain.CompanyID(id)
	c.Country = country
	c.Status = domain.CompanyStatus(status)
	c.LegalName = legalName.String
	c.BusinessType = businessType.String
	c.RegistrationNumber = regNumber.String
	c.Email = email.String
	c.Phone = phone.String
	c.Website = website.String
	c.BusinessActivity = activity.String
	c.AddressLine1 = addr1.String
	c.AddressLine2 = addr2.String
	c.City = city.String
	c.Emirate = emirate.String
	c.POBox = poBox.String
	c.TRN = trn.String
	c.AuthorizedPersonName = apName.String
	c.AuthorizedPersonTitle = apTitle.String
	c.AuthorizedPersonEmail = apEmail.String
	c.AuthorizedPersonPhone = apPhone.String
	if regDate.Valid {
		t := regDate.Time
		c.RegistrationDate = &t
	}
	return &c, nil
}

func insertArgs(c *models.Company) []any {
	return []any{
		string(c.ID), c.Country, string(c.Status), nullStr(c.LegalName), nullStr(c.BusinessType),
		nullStr(c.RegistrationNumber), nullTime(c.RegistrationDate), nullStr(c.Email), nullStr(c.Phone),
		nullStr(c.Website), nullStr(c.BusinessActivity), nullStr(c.AddressLine1), nullStr(c.AddressLine2),
		nullStr(c.City), nullStr(c.Emirate), nullStr(c.POBox), nullStr(c.TRN),
		nullStr(c.AuthorizedPersonName), nullStr(c.AuthorizedPersonTitle), nullStr(c.AuthorizedPersonEmail),
		nullStr(c.AuthorizedPersonPhone), c.EmailVerified, c.Progress.CurrentStep,
		c.Progress.CompanyInfoDone, c.Progress.BusinessDone, c.Progress.DocumentsDone,
		c.Progress.PlanSelectionDone, c.Progress.ReviewDone, c.Progress.Completed,
		c.CreatedAt, c.UpdatedAt,
	}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
