package validation

import "regexp"

// Validation rule patterns
var (
	// EmailPattern validates login emails
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`

	// EnrollmentPattern - student enrollment ids are 6 to 12 digits
	EnrollmentPattern = `^\d{6,12}$`

	// PasswordMinLength for evaluator accounts
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	Enrollment *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	Enrollment: regexp.MustCompile(EnrollmentPattern),
}

// IsValidEmail reports whether the value looks like a valid email address.
func IsValidEmail(value string) bool {
	return CompiledPatterns.Email.MatchString(value)
}

// IsValidEnrollmentID reports whether the value is a well-formed enrollment id.
func IsValidEnrollmentID(value string) bool {
	return CompiledPatterns.Enrollment.MatchString(value)
}
