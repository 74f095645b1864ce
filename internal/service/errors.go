package service

import (
	"errors"
	"fmt"
)

// ErrMissingSubject marks a gateway callback without a user identifier.
var ErrMissingSubject = errors.New("missing merchant_user_id")

// ValidationError reports a rejected field in an admin mutation payload,
// distinct from generic persistence failures so handlers can answer 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
