package content

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError names the offending field; handlers show it inline per
// field and never propagate it further.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func requireText(field, value string, maxLen int) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	if utf8.RuneCountInString(v) > maxLen {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("longer than %d characters", maxLen)}
	}
	return nil
}

func requireEmail(field, value string) error {
	if err := requireText(field, value, 254); err != nil {
		return err
	}
	if !emailRe.MatchString(strings.TrimSpace(value)) {
		return &ValidationError{Field: field, Reason: "not a valid email address"}
	}
	return nil
}
