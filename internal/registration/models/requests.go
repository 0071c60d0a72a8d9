package models

import (
	"github.com/go-playground/validator/v10"

	dErrors "beam/pkg/domain-errors"
)

// validate is shared; validator instances cache struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// CompanyInfo is the step 1 payload: company legal information.
type CompanyInfo struct {
	LegalName          string `json:"legal_name" validate:"required,min=2,max=255"`
	BusinessType       string `json:"business_type" validate:"required"`
	RegistrationNumber string `json:"registration_number" validate:"required"`
	RegistrationDate   string `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone" validate:"omitempty,min=5"`
	Website            string `json:"website,omitempty" validate:"omitempty,url"`
}

// BusinessDetails is the step 2 payload: activity, address, authorized person.
type BusinessDetails struct {
	BusinessActivity      string `json:"business_activity" validate:"required"`
	AddressLine1          string `json:"address_line1" validate:"required"`
	AddressLine2          string `json:"address_line2,omitempty"`
	City                  string `json:"city" validate:"required"`
	Emirate               string `json:"emirate" validate:"required"`
	POBox                 string `json:"po_box,omitempty"`
	TRN                   string `json:"trn,omitempty"`
	AuthorizedPersonName  string `json:"authorized_person_name" validate:"required"`
	AuthorizedPersonTitle string `json:"authorized_person_title" validate:"required"`
	AuthorizedPersonEmail string `json:"authorized_person_email" validate:"required,email"`
	AuthorizedPersonPhone string `json:"authorized_person_phone" validate:"required,min=5"`
}

// PlanSelection is the step 4 payload.
type PlanSelection struct {
	PlanID       string `json:"plan_id" validate:"required"`
	BillingCycle string `json:"billing_cycle,omitempty" validate:"omitempty,oneof=monthly yearly"`
}

// Validate runs struct tag validation and converts the first failure into a
// bad_request domain error naming the offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return dErrors.Newf(dErrors.CodeBadRequest, "field %s failed validation (%s)", fe.Field(), fe.Tag())
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid payload")
}
