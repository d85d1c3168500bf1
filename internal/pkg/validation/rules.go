package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Roll numbers are institute-specific; accept letters, digits and dashes
	RollNumberPattern = `^[A-Za-z0-9\-]{4,20}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	RollNumber *regexp.Regexp
}{
	RollNumber: regexp.MustCompile(RollNumberPattern),
}

// IsRollNumber reports whether s looks like a roll number.
func IsRollNumber(s string) bool {
	return CompiledPatterns.RollNumber.MatchString(strings.TrimSpace(s))
}

// IsStrongPassword requires the minimum length plus at least one letter and
// one digit.
func IsStrongPassword(s string) bool {
	if len(s) < PasswordMinLength {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Register adds the custom tags ("rollno", "password") to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("rollno", func(fl validator.FieldLevel) bool {
		return IsRollNumber(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
}
