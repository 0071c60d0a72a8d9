package domain

import "fmt"

// CompanyStatus is the lifecycle state of a registering company.
//
// Transitions:
//   - PENDING_REVIEW -> ACTIVE (admin approval)
//   - PENDING_REVIEW -> REJECTED (admin rejection)
//   - ACTIVE <-> SUSPENDED (billing enforcement, out of wizard scope)
type CompanyStatus string

const (
	CompanyPendingReview CompanyStatus = "PENDING_REVIEW"
	CompanyActive        CompanyStatus = "ACTIVE"
	CompanySuspended     CompanyStatus = "SUSPENDED"
	CompanyRejected      CompanyStatus = "REJECTED"
)

// CanTransitionTo reports whether the status change is allowed.
func (s CompanyStatus) CanTransitionTo(next CompanyStatus) bool {
	switch s {
	case CompanyPendingReview:
		return next == CompanyActive || next == CompanyRejected
	case CompanyActive:
		return next == CompanySuspended
	case CompanySuspended:
		return next == CompanyActive
	default:
		return false
	}
}

// SubscriptionStatus is the lifecycle state of a company subscription.
type SubscriptionStatus string

const (
	SubscriptionTrial    SubscriptionStatus = "TRIAL"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

// DocumentType enumerates the verification documents collected during
// registration. BUSINESS_LICENSE and TRN_CERTIFICATE are required before the
// documents step can complete.
type DocumentType string

const (
	DocBusinessLicense DocumentType = "BUSINESS_LICENSE"
	DocTRNCertificate  DocumentType = "TRN_CERTIFICATE"
	DocTradeLicense    DocumentType = "TRADE_LICENSE"
	DocPassport        DocumentType = "PASSPORT"
	DocEmiratesID      DocumentType = "EMIRATES_ID"
)

// RequiredDocumentTypes are the document types that must be uploaded before
// the documents step may complete.
func RequiredDocumentTypes() []DocumentType {
	return []DocumentType{DocBusinessLicense, DocTRNCertificate}
}

// ParseDocumentType validates a document type received at a trust boundary.
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocBusinessLicense, DocTRNCertificate, DocTradeLicense, DocPassport, DocEmiratesID:
		return DocumentType(s), nil
	}
	return "", fmt.Errorf("unknown document type: %q", s)
}

// DocumentStatus is the review state of an uploaded document.
type DocumentStatus string

const (
	DocumentPendingReview DocumentStatus = "PENDING_REVIEW"
	DocumentApproved      DocumentStatus = "APPROVED"
	DocumentRejected      DocumentStatus = "REJECTED"
)

// BillingCycle selects monthly or yearly billing for a subscription.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// ParseBillingCycle validates a billing cycle, defaulting empty to monthly.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(s) {
	case "":
		return BillingMonthly, nil
	case BillingMonthly, BillingYearly:
		return BillingCycle(s), nil
	}
	return "", fmt.Errorf("unknown billing cycle: %q", s)
}
