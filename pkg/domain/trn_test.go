package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"beam/pkg/domain"
)

func TestValidTRN(t *testing.T) {
	assert.True(t, domain.ValidTRN("100123456700003"))

	assert.False(t, domain.ValidTRN(""))
	assert.False(t, domain.ValidTRN("12345678901234"))   // 14 digits
	assert.False(t, domain.ValidTRN("1234567890123456")) // 16 digits
	assert.False(t, domain.ValidTRN("10012345670000x"))
	assert.False(t, domain.ValidTRN("100 12345670000"))
}
