package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by every "missing entity" error so callers can match either level.
var ErrNotFound = errors.New("not found")

var (
	ErrLeadNotFound     = fmt.Errorf("lead %w", ErrNotFound)
	ErrCompanyNotFound  = fmt.Errorf("company %w", ErrNotFound)
	ErrContactNotFound  = fmt.Errorf("contact %w", ErrNotFound)
	ErrTemplateNotFound = fmt.Errorf("template %w", ErrNotFound)
	ErrCampaignNotFound = fmt.Errorf("campaign %w", ErrNotFound)
)

// ErrProviderFailed wraps failures of the configured data provider.
var ErrProviderFailed = errors.New("data provider failed")

// ValidationError indicates that a request payload or filter is malformed.
type ValidationError struct {
	Message string
	Details []string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func newValidationError(message string, details ...string) ValidationError {
	return ValidationError{Message: message, Details: details}
}
