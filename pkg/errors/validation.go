package errors

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFieldLength bounds every free-text registration field.
const MaxFieldLength = 256

// ValidateField validates a required free-text field such as a name.
// The label is used verbatim in the error message.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only values
//   - No control characters (newlines would break single-line layout fields)
//   - Maximum length of MaxFieldLength runes
func ValidateField(label, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidInput, "%s is required", label)
	}
	return ValidateOptionalField(label, value)
}

// ValidateOptionalField applies the same checks as ValidateField but accepts an empty value.
func ValidateOptionalField(label, value string) error {
	if utf8.RuneCountInString(value) > MaxFieldLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", label, MaxFieldLength)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", label)
		}
	}
	return nil
}

// ValidateEmail validates an attendee email address.
// Display-name forms ("Ada <ada@example.com>") are rejected.
func ValidateEmail(email string) error {
	if email == "" {
		return New(ErrCodeInvalidEmail, "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return New(ErrCodeInvalidEmail, "invalid email address: %q", email)
	}
	return nil
}

// mobileRegex accepts digits with an optional leading + and common separators.
var mobileRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)

// ValidateMobile validates an optional mobile number.
func ValidateMobile(mobile string) error {
	if mobile == "" {
		return nil
	}
	if !mobileRegex.MatchString(mobile) {
		return New(ErrCodeInvalidInput, "invalid mobile number: %q", mobile)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}

	return nil
}
