package email

import (
	"strings"
	"unicode"
)

var separators = func(r rune) bool {
	return r == '.' || r == '_' || r == '-' || r == '+'
}

// DeriveNameFromEmail guesses a first and last name from an address so
// verification emails can greet the recipient before the authorized-person
// step has been submitted. "jane.doe@acme.ae" becomes ("Jane", "Doe");
// anything unparseable falls back to "User".
func DeriveNameFromEmail(email string) (first, last string) {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		local = email
	}

	parts := strings.FieldsFunc(local, separators)
	first, last = "User", "User"
	if len(parts) > 0 {
		first = capitalize(parts[0])
	}
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}
	return first, last
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
