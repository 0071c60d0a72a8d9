package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "beam/pkg/domain-errors"
)

// Identifiers are opaque prefixed strings issued by the server. The prefix
// makes ids self-describing in logs and support tickets; the hex tail comes
// from a random UUID.
type (
	CompanyID      string
	DocumentID     string
	SubscriptionID string
	PlanID         string
)

const (
	companyIDPrefix      = "co_"
	documentIDPrefix     = "doc_"
	subscriptionIDPrefix = "sub_"
)

func newPrefixedID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewCompanyID issues a fresh company identifier (co_ + 8 hex chars).
func NewCompanyID() CompanyID { return CompanyID(newPrefixedID(companyIDPrefix)) }

// NewDocumentID issues a fresh document identifier (doc_ + 8 hex chars).
func NewDocumentID() DocumentID { return DocumentID(newPrefixedID(documentIDPrefix)) }

// NewSubscriptionID issues a fresh subscription identifier (sub_ + 8 hex chars).
func NewSubscriptionID() SubscriptionID {
	return SubscriptionID(newPrefixedID(subscriptionIDPrefix))
}

func (id CompanyID) String() string      { return string(id) }
func (id DocumentID) String() string     { return string(id) }
func (id SubscriptionID) String() string { return string(id) }
func (id PlanID) String() string         { return string(id) }

func (id CompanyID) IsZero() bool      { return id == "" }
func (id DocumentID) IsZero() bool     { return id == "" }
func (id SubscriptionID) IsZero() bool { return id == "" }
func (id PlanID) IsZero() bool         { return id == "" }

// ParseCompanyID validates an id received at a trust boundary (URL path,
// request body). IDs must be non-empty and carry the co_ prefix.
func ParseCompanyID(s string) (CompanyID, error) {
	if err := checkPrefixed(s, companyIDPrefix, "company id"); err != nil {
		return "", err
	}
	return CompanyID(s), nil
}

// ParseDocumentID validates a document id received at a trust boundary.
func ParseDocumentID(s string) (DocumentID, error) {
	if err := checkPrefixed(s, documentIDPrefix, "document id"); err != nil {
		return "", err
	}
	return DocumentID(s), nil
}

// ParsePlanID validates a plan id. Plan ids are seeded strings (plan_starter,
// plan_professional, plan_enterprise), so only emptiness is rejected here.
func ParsePlanID(s string) (PlanID, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "plan id is required")
	}
	return PlanID(s), nil
}

func checkPrefixed(s, prefix, what string) error {
	if s == "" {
		return dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	if !strings.HasPrefix(s, prefix) || len(s) <= len(prefix) {
		return dErrors.New(dErrors.CodeInvalidInput, "malformed "+what)
	}
	return nil
}
