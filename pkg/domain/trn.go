package domain

// ValidTRN reports whether a UAE Tax Registration Number is well formed.
// A TRN is exactly 15 decimal digits.
func ValidTRN(trn string) bool {
	if len(trn) != 15 {
		return false
	}
	for _, r := range trn {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
