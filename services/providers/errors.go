package providers

import (
	"errors"
	"fmt"
)

// ProviderError represents a non-2xx response or transport failure from a
// provider. It is recoverable at the chain level: the dispatcher logs it
// and moves to the next provider.
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// StatusCode is the HTTP status code (0 for transport failures)
	StatusCode int

	// Body is the raw response body, when one was received
	Body string

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Message, e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, message string, statusCode int, body string, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       body,
		Message:    message,
		Cause:      cause,
	}
}

// ConfigurationError means a provider cannot be called at all: its
// credential is absent or the integration is scaffolded only. Fatal for
// that provider, recoverable at the chain level.
type ConfigurationError struct {
	Provider string
	Message  string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// NewMissingCredentialError reports an absent API key
func NewMissingCredentialError(provider, envVar string) *ConfigurationError {
	return &ConfigurationError{
		Provider: provider,
		Message:  fmt.Sprintf("missing credential: set %s", envVar),
	}
}

// NewNotConfiguredError reports a scaffolded integration. The message is
// deliberately distinguishable so an exhausted-chain error names it.
func NewNotConfiguredError(provider, displayName string) *ConfigurationError {
	return &ConfigurationError{
		Provider: provider,
		Message:  fmt.Sprintf("%s integration not yet configured", displayName),
	}
}

// IsConfigurationError checks if an error is a provider configuration error
func IsConfigurationError(err error) bool {
	var confErr *ConfigurationError
	return errors.As(err, &confErr)
}

// IsProviderError checks if an error is a provider call error
func IsProviderError(err error) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr)
}
