package plan

import (
	"time"

	"beam/pkg/domain"
)

// Plan is one subscription tier in the public catalog.
type Plan struct {
	ID                  domain.PlanID `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	PriceMonthly        float64       `json:"price_monthly"`
	PriceYearly         float64       `json:"price_yearly"`
	MaxInvoicesPerMonth *int          `json:"max_invoices_per_month"` // nil means unlimited
	MaxUsers            int           `json:"max_users"`
	MaxPOSDevices       int           `json:"max_pos_devices"`
	AllowAPIAccess      bool          `json:"allow_api_access"`
	AllowBranding       bool          `json:"allow_branding"`
	AllowMultiCurrency  bool          `json:"allow_multi_currency"`
	PrioritySupport     bool          `json:"priority_support"`
	Active              bool          `json:"-"`
	CreatedAt           time.Time     `json:"-"`
}

// Defaults returns the seeded catalog: Starter, Professional, Enterprise.
func Defaults(now time.Time) []*Plan {
	starter, professional := 100, 500
	return []*Plan{
		{
			ID:                  "plan_starter",
			Name:                "Starter",
			Description:         "Perfect for small businesses",
			PriceMonthly:        99.0,
			PriceYearly:         990.0,
			MaxInvoicesPerMonth: &starter,
			MaxUsers:            2,
			MaxPOSDevices:       1,
			AllowAPIAccess:      true,
			Active:              true,
			CreatedAt:           now,
		},
		{
			ID:                  "plan_professional",
			Name:                "Professional",
			Description:         "For growing businesses",
			PriceMonthly:        299.0,
			PriceYearly:         2990.0,
			MaxInvoicesPerMonth: &professional,
			MaxUsers:            5,
			MaxPOSDevices:       3,
			AllowAPIAccess:      true,
			AllowBranding:       true,
			AllowMultiCurrency:  true,
			Active:              true,
			CreatedAt:           now,
		},
		{
			ID:                 "plan_enterprise",
			Name:               "Enterprise",
			Description:        "Unlimited for large organizations",
			PriceMonthly:       999.0,
			PriceYearly:        9990.0,
			MaxUsers:           50,
			MaxPOSDevices:      10,
			AllowAPIAccess:     true,
			AllowBranding:      true,
			AllowMultiCurrency: true,
			PrioritySupport:    true,
			Active:             true,
			CreatedAt:          now,
		},
	}
}
