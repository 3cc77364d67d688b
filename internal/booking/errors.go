package booking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate is returned when an identical submission (same contact
// email and slot) was already accepted within the idempotency window.
var ErrDuplicate = errors.New("booking: duplicate submission")

// ValidationError reports missing and malformed request fields. Each
// offending field is listed by its wire name.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return "booking: " + strings.Join(parts, "; ")
}

// FormatError reports a time token that matches neither the 12-hour nor
// the 24-hour pattern, or one with out-of-range components.
type FormatError struct {
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("booking: invalid time %q: %s", e.Token, e.Reason)
}
