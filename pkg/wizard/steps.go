package wizard

import "fmt"

// StepDefinition is static flow configuration, not server state. Required
// fields gate the Next transition; Check carries a step-specific rule that
// plain field presence cannot express.
type StepDefinition struct {
	Ordinal  int
	Name     string
	Required []string
	Optional []string
	Check    func(View) error

	// Review marks the summary step. It is always last and has no
	// submission of its own; Finalize handles it.
	Review bool
}

// DefaultSteps is the Beam onboarding flow: company legal info, business
// details, documents, plan selection, review.
func DefaultSteps() []StepDefinition {
	return []StepDefinition{
		{
			Ordinal:  1,
			Name:     "company_info",
			Required: []string{"legal_name", "business_type", "registration_number", "email"},
			Optional: []string{"registration_date", "phone", "website"},
		},
		{
			Ordinal: 2,
			Name:    "business_details",
			Required: []string{
				"business_activity", "address_line1", "city", "emirate",
				"authorized_person_name", "authorized_person_title",
				"authorized_person_email", "authorized_person_phone",
			},
			Optional: []string{"address_line2", "po_box", "trn"},
		},
		{
			Ordinal: 3,
			Name:    "documents",
			Check:   requireBusinessLicense,
		},
		{
			Ordinal:  4,
			Name:     "plan",
			Required: []string{"plan_id"},
			Optional: []string{"billing_cycle"},
		},
		{
			Ordinal: 5,
			Name:    "review",
			Review:  true,
			Check:   requireTerms,
		},
	}
}

func requireBusinessLicense(v View) error {
	if _, ok := v.Documents[DocTypeBusinessLicense]; !ok {
		return &ValidationError{
			Field:   "documents",
			Message: "a business license upload is required",
		}
	}
	return nil
}

func requireTerms(v View) error {
	if !v.TermsAccepted {
		return &ValidationError{
			Field:   "terms",
			Message: "you must accept the terms and conditions",
		}
	}
	return nil
}

// checkSteps enforces the static invariants: contiguous ordinals from 1 and
// the review step last.
func checkSteps(steps []StepDefinition) error {
	if len(steps) == 0 {
		return fmt.Errorf("wizard: no steps configured")
	}
	for i, step := range steps {
		if step.Ordinal != i+1 {
			return fmt.Errorf("wizard: step %q has ordinal %d, want %d", step.Name, step.Ordinal, i+1)
		}
		if step.Review != (i == len(steps)-1) {
			return fmt.Errorf("wizard: review must be the last step")
		}
	}
	return nil
}
