package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ana.ruiz@hospital.org"))
	assert.True(t, IsValidEmail("eval+osce@ecoehub.app"))
	assert.False(t, IsValidEmail("no-at-sign"))
	assert.False(t, IsValidEmail("missing@tld"))
}

func TestIsValidEnrollmentID(t *testing.T) {
	assert.True(t, IsValidEnrollmentID("123456"))
	assert.True(t, IsValidEnrollmentID("123456789012"))
	assert.False(t, IsValidEnrollmentID("12345"))
	assert.False(t, IsValidEnrollmentID("1234567890123"))
	assert.False(t, IsValidEnrollmentID("12345A"))
}
