// Package wizard implements the registration flow as an explicit state
// machine over a single owned session object. The flow is linear: numbered
// steps, then a review step, then finalize. Every transition is guarded by
// the step's validator, and no submission, upload, or finalize call may
// overlap another of the same kind.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// MaxUploadBytes is the client-side upload limit. Files at exactly this size
// pass; one byte over is rejected before any network call.
const MaxUploadBytes = 5 * 1024 * 1024

// Document type labels for the upload slots.
const (
	DocTypeBusinessLicense = "BUSINESS_LICENSE"
	DocTypeTRNCertificate  = "TRN_CERTIFICATE"
)

var (
	// ErrUploadInFlight blocks Next while a document upload is running.
	ErrUploadInFlight = errors.New("wizard: upload in progress")
	// ErrSubmitInFlight blocks a transition while another one is running.
	ErrSubmitInFlight = errors.New("wizard: submission in progress")
	// ErrAlreadySubmitted rejects writes after a successful finalize.
	ErrAlreadySubmitted = errors.New("wizard: registration already submitted")
	// ErrFileTooLarge rejects oversized uploads before the network.
	ErrFileTooLarge = fmt.Errorf("wizard: file exceeds the %d byte upload limit", MaxUploadBytes)
	// ErrNotAtReview rejects Finalize before the review step is reached.
	ErrNotAtReview = errors.New("wizard: finalize is only available at the review step")
)

// ValidationError names the first failing field of a step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Backend is the server the wizard drives. beamclient provides the real one;
// tests substitute fakes.
type Backend interface {
	Init(ctx context.Context) (string, error)
	SubmitStep(ctx context.Context, sessionID string, step StepDefinition, values map[string]string) error
	UploadDocument(ctx context.Context, sessionID, docType, fileName string, content []byte) (ref string, err error)
	Finalize(ctx context.Context, sessionID string) error
}

// Document is one successfully uploaded file: its slot, original filename,
// and the opaque server reference.
type Document struct {
	Type     string
	FileName string
	Ref      string
}

// Phase is the finalize lifecycle. Until Finalize is called the session sits
// in PhaseEditing regardless of which step is showing.
type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Session owns all wizard state: the server-issued id, per-step values, the
// upload slots, and the finalize phase. Methods are safe for use from
// multiple goroutines, which keeps the in-flight upload guard honest.
type Session struct {
	backend Backend
	steps   []StepDefinition

	mu            sync.Mutex
	id            string
	current       int // 1-based ordinal
	values        map[int]map[string]string
	documents     map[string]Document
	termsAccepted bool
	phase         Phase
	uploads       int
	submitting    bool
}

// NewSession validates the step table and allocates a server session. An init
// failure is fatal to the whole flow; there is nothing to recover into.
func NewSession(ctx context.Context, backend Backend, steps []StepDefinition) (*Session, error) {
	if err := checkSteps(steps); err != nil {
		return nil, err
	}
	id, err := backend.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("wizard: registration could not be started: %w", err)
	}
	return &Session{
		backend:   backend,
		steps:     steps,
		id:        id,
		current:   1,
		values:    make(map[int]map[string]string),
		documents: make(map[string]Document),
		phase:     PhaseEditing,
	}, nil
}

// ID returns the server-issued session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Step returns the current 1-based step ordinal.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// TotalSteps returns the step count including review.
func (s *Session) TotalSteps() int { return len(s.steps) }

// Progress reports completion as a percentage: current step over total steps.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.current) / float64(len(s.steps)) * 100
}

// Phase returns the finalize lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// State names the current machine state, for display and logs: "step_1",
// "review", "submitting", "done", "failed".
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseSubmitting, PhaseDone, PhaseFailed:
		return string(s.phase)
	}
	if s.steps[s.current-1].Review {
		return "review"
	}
	return fmt.Sprintf("step_%d", s.current)
}

// SetField records a value on the current step. Setting a field on a later
// step is not possible; navigate there first.
func (s *Session) SetField(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFieldLocked(s.current, name, value)
}

func (s *Session) setFieldLocked(step int, name, value string) {
	if s.values[step] == nil {
		s.values[step] = make(map[string]string)
	}
	s.values[step][name] = value
}

// Field reads a value from the current step.
func (s *Session) Field(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[s.current][name]
}

// SelectPlan records the chosen plan on the plan step, replacing any earlier
// choice. Exactly one plan is selected at a time.
func (s *Session) SelectPlan(planID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, step := range s.steps {
		for _, f := range step.Required {
			if f == "plan_id" {
				s.setFieldLocked(step.Ordinal, "plan_id", planID)
				return
			}
		}
	}
}

// SelectedPlan returns the current plan choice, empty until one is made.
func (s *Session) SelectedPlan() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, step := range s.steps {
		if v := s.values[step.Ordinal]["plan_id"]; v != "" {
			return v
		}
	}
	return ""
}

// AcceptTerms flips the terms-acceptance flag checked at the review step.
func (s *Session) AcceptTerms(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.termsAccepted = accepted
}

// Next validates the current step, submits it, and advances. On validation or
// submission failure the index does not move and the entered values stay put.
// Blocked while an upload or another submission is in flight.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseDone {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if s.uploads > 0 {
		s.mu.Unlock()
		return ErrUploadInFlight
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	step := s.steps[s.current-1]
	if err := s.validateLocked(step); err != nil {
		s.mu.Unlock()
		return err
	}
	if step.Review {
		// Review is the last step; there is nowhere to advance to.
		s.mu.Unlock()
		return nil
	}
	values := cloneValues(s.values[step.Ordinal])
	s.submitting = true
	s.mu.Unlock()

	err := s.backend.SubmitStep(ctx, s.id, step, values)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		return fmt.Errorf("wizard: failed to save this step: %w", err)
	}
	if s.current < len(s.steps) {
		s.current++
	}
	return nil
}

// Back moves to the previous step without validating or resubmitting.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 1 {
		s.current--
	}
}

// JumpTo navigates directly to an earlier step, as the review screen's edit
// links do. Forward jumps would skip validation and are rejected.
func (s *Session) JumpTo(step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < 1 || step > s.current {
		return fmt.Errorf("wizard: cannot jump to step %d from step %d", step, s.current)
	}
	s.current = step
	return nil
}

// View is a read-only snapshot handed to step Check rules.
type View struct {
	Values        map[string]string
	Documents     map[string]Document
	TermsAccepted bool
}

func (s *Session) viewLocked(step StepDefinition) View {
	docs := make(map[string]Document, len(s.documents))
	for k, v := range s.documents {
		docs[k] = v
	}
	return View{
		Values:        cloneValues(s.values[step.Ordinal]),
		Documents:     docs,
		TermsAccepted: s.termsAccepted,
	}
}

// validateLocked checks required-field presence plus the step rule. Values
// are trimmed: whitespace-only input does not satisfy a required field.
func (s *Session) validateLocked(step StepDefinition) error {
	for _, field := range step.Required {
		if strings.TrimSpace(s.values[step.Ordinal][field]) == "" {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s is required", field),
			}
		}
	}
	if step.Check != nil {
		if err := step.Check(s.viewLocked(step)); err != nil {
			return err
		}
	}
	return nil
}

func cloneValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
