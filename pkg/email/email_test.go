package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"beam/pkg/email"
)

func TestDeriveNameFromEmail(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"jane.doe@acme.ae", "Jane", "Doe"},
		{"omar@acme.ae", "Omar", "User"},
		{"finance-team+invoices@acme.ae", "Finance", "Invoices"},
		{"", "User", "User"},
	}
	for _, tc := range cases {
		first, last := email.DeriveNameFromEmail(tc.in)
		assert.Equal(t, tc.first, first, tc.in)
		assert.Equal(t, tc.last, last, tc.in)
	}
}
