package document

import (
	"time"

	"beam/pkg/domain"
)

// Document is one uploaded verification file for a registering company.
type Document struct {
	ID             domain.DocumentID     `json:"id"`
	CompanyID      domain.CompanyID      `json:"company_id"`
	Type           domain.DocumentType   `json:"document_type"`
	FileName       string                `json:"file_name"`
	FilePath       string                `json:"-"`
	FileSize       int64                 `json:"file_size"`
	MimeType       string                `json:"mime_type"`
	Status         domain.DocumentStatus `json:"status"`
	IssueDate      *time.Time            `json:"issue_date,omitempty"`
	ExpiryDate     *time.Time            `json:"expiry_date,omitempty"`
	DocumentNumber string                `json:"document_number,omitempty"`
	UploadedAt     time.Time             `json:"uploaded_at"`
}

// Upload carries a validated upload into the service.
type Upload struct {
	CompanyID      domain.CompanyID
	Type           domain.DocumentType
	FileName       string
	MimeType       string
	Content        []byte
	IssueDate      *time.Time
	ExpiryDate     *time.Time
	DocumentNumber string
}
