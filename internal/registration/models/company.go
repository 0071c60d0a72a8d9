package models

import (
	"time"

	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
)

// Company is the aggregate root for one registration session and, once
// approved, the tenant organization itself.
//
// Invariants:
//   - ID is issued once at /register/init and never changes
//   - Status transitions follow domain.CompanyStatus.CanTransitionTo
//   - TRN, when present, is 15 digits (checked at step 2 submission)
//   - Progress is 1:1 with the company and created together with it
//
// The wizard resubmits steps freely: a later submission of the same step
// overwrites the previously stored values. Nothing is invalidated backward;
// the progress flags only ever move forward.
type Company struct {
	ID      domain.CompanyID     `json:"id"`
	Country string               `json:"country"`
	Status  domain.CompanyStatus `json:"status"`

	// Step 1: company legal info.
	LegalName          string     `json:"legal_name,omitempty"`
	BusinessType       string     `json:"business_type,omitempty"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	RegistrationDate   *time.Time `json:"registration_date,omitempty"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Website            string     `json:"website,omitempty"`

	// Step 2: business details, address, authorized person.
	BusinessActivity      string `json:"business_activity,omitempty"`
	AddressLine1          string `json:"address_line1,omitempty"`
	AddressLine2          string `json:"address_line2,omitempty"`
	City                  string `json:"city,omitempty"`
	Emirate               string `json:"emirate,omitempty"`
	POBox                 string `json:"po_box,omitempty"`
	TRN                   string `json:"trn,omitempty"`
	AuthorizedPersonName  string `json:"authorized_person_name,omitempty"`
	AuthorizedPersonTitle string `json:"authorized_person_title,omitempty"`
	AuthorizedPersonEmail string `json:"authorized_person_email,omitempty"`
	AuthorizedPersonPhone string `json:"authorized_person_phone,omitempty"`

	EmailVerified bool `json:"email_verified"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress tracks which wizard steps have been completed server-side.
type Progress struct {
	CurrentStep       int  `json:"current_step"`
	CompanyInfoDone   bool `json:"step_company_info"`
	BusinessDone      bool `json:"step_business_details"`
	DocumentsDone     bool `json:"step_documents"`
	PlanSelectionDone bool `json:"step_plan_selection"`
	ReviewDone        bool `json:"step_review"`
	Completed         bool `json:"completed"`
}

// NewCompany starts a registration session in AE with pending-review status.
func NewCompany(id domain.CompanyID, now time.Time) *Company {
	return &Company{
		ID:        id,
		Country:   "AE",
		Status:    domain.CompanyPendingReview,
		Progress:  Progress{CurrentStep: 1},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AllStepsComplete reports whether every pre-review step has been submitted.
func (p Progress) AllStepsComplete() bool {
	return p.CompanyInfoDone && p.BusinessDone && p.DocumentsDone && p.PlanSelectionDone
}

// CanFinalize checks the finalize precondition: all prior steps complete and
// the session not already finalized.
func (c *Company) CanFinalize() error {
	if c.Progress.Completed {
		return dErrors.New(dErrors.CodeConflict, "registration already submitted")
	}
	if !c.Progress.AllStepsComplete() {
		return dErrors.New(dErrors.CodeBadRequest, "all previous steps must be completed")
	}
	return nil
}

// ApplyFinalize marks the registration submitted. Call CanFinalize first.
func (c *Company) ApplyFinalize(now time.Time) {
	c.Progress.ReviewDone = true
	c.Progress.Completed = true
	c.UpdatedAt = now
}

// CanApprove checks the admin approval transition.
func (c *Company) CanApprove() error {
	if !c.Status.CanTransitionTo(domain.CompanyActive) {
		return dErrors.Newf(dErrors.CodeConflict, "company in status %s cannot be approved", c.Status)
	}
	return nil
}

// ApplyApproval activates the company. Call CanApprove first.
func (c *Company) ApplyApproval(now time.Time) {
	c.Status = domain.CompanyActive
	c.UpdatedAt = now
}

// CanReject checks the admin rejection transition.
func (c *Company) CanReject() error {
	if !c.Status.CanTransitionTo(domain.CompanyRejected) {
		return dErrors.Newf(dErrors.CodeConflict, "company in status %s cannot be rejected", c.Status)
	}
	return nil
}

// ApplyRejection marks the company rejected. Call CanReject first.
func (c *Company) ApplyRejection(now time.Time) {
	c.Status = domain.CompanyRejected
	c.UpdatedAt = now
}

// MarkStepDone records completion of a wizard step and advances the stored
// step pointer. Resubmitting a completed step keeps the pointer where it is.
func (c *Company) MarkStepDone(step int, now time.Time) {
	switch step {
	case 1:
		c.Progress.CompanyInfoDone = true
	case 2:
		c.Progress.BusinessDone = true
	case 3:
		c.Progress.DocumentsDone = true
	case 4:
		c.Progress.PlanSelectionDone = true
	}
	if next := step + 1; next > c.Progress.CurrentStep {
		c.Progress.CurrentStep = next
	}
	c.UpdatedAt = now
}
