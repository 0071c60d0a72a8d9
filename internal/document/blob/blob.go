// Package blob stores uploaded document bytes on disk under the artifact
// directory, one subdirectory per company.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"beam/pkg/domain"
)

// Disk writes document content to the local filesystem.
type Disk struct {
	root string
}

// NewDisk ensures the documents directory exists under root.
func NewDisk(root string) (*Disk, error) {
	dir := filepath.Join(root, "documents")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Disk{root: dir}, nil
}

// Save writes content and returns the stored path. The stored name combines a
// random id with the document type so re-uploads never collide.
func (d *Disk) Save(companyID domain.CompanyID, docType domain.DocumentType, fileName string, content []byte) (string, error) {
	dir := filepath.Join(d.root, companyID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create company dir: %w", err)
	}

	ext := "pdf"
	if i := strings.LastIndexByte(fileName, '.'); i >= 0 && i < len(fileName)-1 {
		ext = fileName[i+1:]
	}
	name := fmt.Sprintf("%s_%s.%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12], docType, ext)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

// Remove deletes stored content. Missing files are not an error; the record
// is authoritative.
func (d *Disk) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}
