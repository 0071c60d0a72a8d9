package wizard

import "context"

// Upload validates and uploads one file into a document-type slot,
// independent of step navigation. Oversized files are rejected before any
// network call. While an upload runs the Next transition is blocked.
func (s *Session) Upload(ctx context.Context, docType, fileName string, content []byte) error {
	if int64(len(content)) > MaxUploadBytes {
		return ErrFileTooLarge
	}

	s.mu.Lock()
	if s.phase == PhaseDone {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	s.uploads++
	s.mu.Unlock()

	ref, err := s.backend.UploadDocument(ctx, s.id, docType, fileName, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads--
	if err != nil {
		// The slot keeps its previous upload, if any; only the failed
		// selection is dropped.
		return err
	}
	s.documents[docType] = Document{Type: docType, FileName: fileName, Ref: ref}
	return nil
}

// RemoveDocument clears a slot locally. No delete call is made to the server;
// the orphaned upload is the server's to clean up, and finalize only checks
// which types are present server-side.
func (s *Session) RemoveDocument(docType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, docType)
}

// Documents returns a snapshot of the upload slots.
func (s *Session) Documents() map[string]Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Document, len(s.documents))
	for k, v := range s.documents {
		out[k] = v
	}
	return out
}
