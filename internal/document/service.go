package document

import (
	"context"
	"errors"
	"log/slog"

	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
	"beam/pkg/platform/sentinel"
	"beam/pkg/requestcontext"
)

// Store persists document records.
type Store interface {
	Create(ctx context.Context, d *Document) error
	FindByID(ctx context.Context, companyID domain.CompanyID, id domain.DocumentID) (*Document, error)
	ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*Document, error)
	Delete(ctx context.Context, companyID domain.CompanyID, id domain.DocumentID) error
}

// BlobStore persists document bytes.
type BlobStore interface {
	Save(companyID domain.CompanyID, docType domain.DocumentType, fileName string, content []byte) (string, error)
	Remove(path string) error
}

// allowedMimeTypes mirrors what the review team can open.
var allowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
}

// Service validates and persists document uploads.
type Service struct {
	store    Store
	blobs    BlobStore
	maxBytes int64
	logger   *slog.Logger
}

func NewService(store Store, blobs BlobStore, maxBytes int64, logger *slog.Logger) *Service {
	return &Service{store: store, blobs: blobs, maxBytes: maxBytes, logger: logger}
}

// SaveUpload validates size and content type, writes the blob, and records
// the document. Earlier uploads of the same type are kept; the newest record
// wins at the required-documents check.
func (s *Service) SaveUpload(ctx context.Context, up Upload) (*Document, error) {
	if len(up.Content) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "file is empty")
	}
	if int64(len(up.Content)) > s.maxBytes {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "file size exceeds %d byte limit", s.maxBytes)
	}
	if _, ok := allowedMimeTypes[up.MimeType]; !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid file type, allowed: PDF, JPEG, PNG")
	}

	path, err := s.blobs.Save(up.CompanyID, up.Type, up.FileName, up.Content)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store file")
	}

	doc := &Document{
		ID:             domain.NewDocumentID(),
		CompanyID:      up.CompanyID,
		Type:           up.Type,
		FileName:       up.FileName,
		FilePath:       path,
		FileSize:       int64(len(up.Content)),
		MimeType:       up.MimeType,
		Status:         domain.DocumentPendingReview,
		IssueDate:      up.IssueDate,
		ExpiryDate:     up.ExpiryDate,
		DocumentNumber: up.DocumentNumber,
		UploadedAt:     requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, doc); err != nil {
		if rmErr := s.blobs.Remove(path); rmErr != nil {
			s.logger.WarnContext(ctx, "orphaned blob after failed insert", "path", path, "error", rmErr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record document")
	}
	return doc, nil
}

// List returns all documents uploaded for a company.
func (s *Service) List(ctx context.Context, companyID domain.CompanyID) ([]*Document, error) {
	docs, err := s.store.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// Delete removes a document record and its stored file.
func (s *Service) Delete(ctx context.Context, companyID domain.CompanyID, id domain.DocumentID) error {
	doc, err := s.store.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if err := s.store.Delete(ctx, companyID, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete document")
	}
	if err := s.blobs.Remove(doc.FilePath); err != nil {
		s.logger.WarnContext(ctx, "orphaned blob after record delete", "path", doc.FilePath, "error", err)
	}
	return nil
}

// HasRequiredTypes reports whether every required document type has at least
// one upload, and lists the missing ones.
func (s *Service) HasRequiredTypes(ctx context.Context, companyID domain.CompanyID) (bool, []domain.DocumentType, error) {
	docs, err := s.store.ListByCompany(ctx, companyID)
	if err != nil {
		return false, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	have := make(map[domain.DocumentType]bool, len(docs))
	for _, d := range docs {
		have[d.Type] = true
	}
	var missing []domain.DocumentType
	for _, t := range domain.RequiredDocumentTypes() {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	return len(missing) == 0, missing, nil
}
