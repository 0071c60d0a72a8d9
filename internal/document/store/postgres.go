package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"beam/internal/document"
	"beam/pkg/domain"
	"beam/pkg/platform/sentinel"
)

// Schema creates the company_documents table.
const Schema = `
CREATE TABLE IF NOT EXISTS company_documents (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies (id),
	document_type TEXT NOT NULL,
	file_name TEXT NOT NULL,
	file_path TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	mime_type TEXT,
	status TEXT NOT NULL,
	issue_date DATE,
	expiry_date DATE,
	document_number TEXT,
	uploaded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS company_documents_company_idx ON company_documents (company_id);
`

// Postgres persists document records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const docColumns = `id, company_id, document_type, file_name, file_path, file_size,
	mime_type, status, issue_date, expiry_date, document_number, uploaded_at`

func (s *Postgres) Create(ctx context.Context, d *document.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO company_documents (`+docColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		string(d.ID), string(d.CompanyID), string(d.Type), d.FileName, d.FilePath, d.FileSize,
		d.MimeType, string(d.Status), nullDate(d.IssueDate), nullDate(d.ExpiryDate),
		sql.NullString{String: d.DocumentNumber, Valid: d.DocumentNumber != ""}, d.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, companyID domain.CompanyID, id domain.DocumentID) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+docColumns+` FROM company_documents WHERE id = $1 AND company_id = $2`,
		string(id), string(companyID))
	return scanDocument(row)
}

func (s *Postgres) ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*document.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+docColumns+` FROM company_documents WHERE company_id = $1 ORDER BY uploaded_at`,
		string(companyID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, companyID domain.CompanyID, id domain.DocumentID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM company_documents WHERE id = $1 AND company_id = $2`,
		string(id), string(companyID))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*document.Document, error) {
	var d document.Document
	var id, companyID, docType, status string
	var mimeType, docNumber sql.NullString
	var issueDate, expiryDate sql.NullTime

	err := row.Scan(&id, &companyID, &docType, &d.FileName, &d.FilePath, &d.FileSize,
		&mimeType, &status, &issueDate, &expiryDate, &docNumber, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	d.ID = domain.DocumentID(id)
	d.CompanyID = domain.CompanyID(companyID)
	d.Type = domain.DocumentType(docType)
	d.Status = domain.DocumentStatus(status)
	d.MimeType = mimeType.String
	d.DocumentNumber = docNumber.String
	if issueDate.Valid {
		t := issueDate.Time
		d.IssueDate = &t
	}
	if expiryDate.Valid {
		t := expiryDate.Time
		d.ExpiryDate = &t
	}
	return &d, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
