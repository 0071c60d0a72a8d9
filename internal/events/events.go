// Package events publishes registration lifecycle events.
//
// Publishing is fail-open: the wizard's step submissions must not fail because
// the event pipeline is down, so publishers log and drop on error. Consumers
// that need stronger guarantees should read the stores, not the stream.
package events

import (
	"context"
	"time"

	"beam/pkg/domain"
)

// Event types emitted over the registration lifecycle.
const (
	TypeRegistrationInitialized = "registration.initialized"
	TypeStepCompleted           = "registration.step_completed"
	TypeRegistrationFinalized   = "registration.finalized"
	TypeDocumentUploaded        = "registration.document_uploaded"
	TypeVerificationSent        = "registration.verification_sent"
	TypeEmailVerified           = "registration.email_verified"
	TypeCompanyApproved         = "company.approved"
	TypeCompanyRejected         = "company.rejected"
)

// Event is one registration lifecycle fact. CompanyID keys the Kafka record
// so per-company ordering is preserved within a partition.
type Event struct {
	Type      string            `json:"type"`
	CompanyID domain.CompanyID  `json:"company_id"`
	At        time.Time         `json:"at"`
	RequestID string            `json:"request_id,omitempty"`
	Browser   string            `json:"browser,omitempty"`
	OS        string            `json:"os,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Publisher emits events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close()
}
