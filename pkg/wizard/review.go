package wizard

import "context"

// Section is one review group: a step's name and its collected values.
type Section struct {
	Step   string
	Fields map[string]string
}

// Summary is the review screen's content, rebuilt from locally accumulated
// data. The server remains the source of truth; this is only the echo the
// user confirms.
type Summary struct {
	SessionID     string
	Sections      []Section
	Documents     []Document
	Plan          string
	TermsAccepted bool
}

// Review produces the summary for the final step. Sections follow step
// order; steps without collected values are skipped.
func (s *Session) Review() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		SessionID:     s.id,
		TermsAccepted: s.termsAccepted,
	}
	for _, step := range s.steps {
		if step.Review {
			continue
		}
		values := s.values[step.Ordinal]
		if len(values) == 0 {
			continue
		}
		if plan := values["plan_id"]; plan != "" {
			sum.Plan = plan
		}
		sum.Sections = append(sum.Sections, Section{
			Step:   step.Name,
			Fields: cloneValues(values),
		})
	}
	for _, doc := range s.documents {
		sum.Documents = append(sum.Documents, doc)
	}
	return sum
}

// CanSubmit reports whether the finalize control should be enabled. It is
// true at the review step whenever no finalize call is in flight and the
// flow has not already completed; a failed attempt re-enables it.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.current-1].Review &&
		s.phase != PhaseSubmitting && s.phase != PhaseDone
}

// Finalize submits the completed registration. All step data is already
// persisted server-side; only the session id travels. On failure the phase
// moves to failed and submission stays available; on success the session is
// read-only.
func (s *Session) Finalize(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseDone {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if s.phase == PhaseSubmitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	step := s.steps[s.current-1]
	if !step.Review {
		s.mu.Unlock()
		return ErrNotAtReview
	}
	if err := s.validateLocked(step); err != nil {
		s.mu.Unlock()
		return err
	}
	s.phase = PhaseSubmitting
	s.mu.Unlock()

	err := s.backend.Finalize(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = PhaseFailed
		return err
	}
	s.phase = PhaseDone
	return nil
}
