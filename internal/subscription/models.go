package subscription

import (
	"time"

	"beam/pkg/domain"
)

// Subscription ties a company to a plan for a billing period. Created as a
// trial at plan selection, activated when the company is approved, swept to
// past-due when the trial lapses without approval-side billing.
type Subscription struct {
	ID                 domain.SubscriptionID     `json:"subscription_id"`
	CompanyID          domain.CompanyID          `json:"company_id"`
	PlanID             domain.PlanID             `json:"plan_id"`
	Status             domain.SubscriptionStatus `json:"status"`
	BillingCycle       domain.BillingCycle       `json:"billing_cycle"`
	CurrentPeriodStart time.Time                 `json:"current_period_start"`
	CurrentPeriodEnd   time.Time                 `json:"current_period_end"`
	InvoicesThisPeriod int                       `json:"invoices_this_period"`
	CreatedAt          time.Time                 `json:"-"`
}

// NewTrial starts a trial subscription running trialDays from now.
func NewTrial(companyID domain.CompanyID, planID domain.PlanID, cycle domain.BillingCycle, now time.Time, trialDays int) *Subscription {
	return &Subscription{
		ID:                 domain.NewSubscriptionID(),
		CompanyID:          companyID,
		PlanID:             planID,
		Status:             domain.SubscriptionTrial,
		BillingCycle:       cycle,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, trialDays),
		CreatedAt:          now,
	}
}
