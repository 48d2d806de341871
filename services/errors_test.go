package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewDomainError(ErrorTypeLimitExceeded, "daily run limit reached", nil)
		assert.Equal(t, "limit_exceeded: daily run limit reached", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewDomainError(ErrorTypeInternal, "something broke", cause)
		assert.Contains(t, err.Error(), "internal: something broke")
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewDomainError(ErrorTypeProvider, "provider exploded", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError(ErrorTypeLimitExceeded, "agent blocked", nil)

	assert.True(t, errors.Is(err, ErrRunLimitReached))
	assert.False(t, errors.Is(err, ErrAgentNotFound))
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeLimitExceeded, "blocked", nil).
		WithDetail("run_count", 5).
		WithDetail("daily_run_cap", 5)

	details := GetErrorDetails(err)
	assert.Equal(t, 5, details["run_count"])
	assert.Equal(t, 5, details["daily_run_cap"])
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		want    bool
	}{
		{"limit exceeded matches", ErrRunLimitReached, IsLimitExceededError, true},
		{"configuration matches", ErrProviderNotConfigured, IsConfigurationError, true},
		{"provider matches", ErrProviderError, IsProviderError, true},
		{"all providers failed matches", ErrAllProvidersFailed, IsAllProvidersFailedError, true},
		{"not found matches", ErrAgentNotFound, IsNotFoundError, true},
		{"validation matches", ErrEmptyPrompt, IsValidationError, true},
		{"internal matches", ErrDatabaseError, IsInternalError, true},
		{"mismatched type", ErrAgentNotFound, IsProviderError, false},
		{"plain error", errors.New("nope"), IsLimitExceededError, false},
		{"nil error", nil, IsInternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker(tt.err))
		})
	}
}

func TestErrorTypeCheckers_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrAllProvidersFailed)
	assert.True(t, IsAllProvidersFailedError(wrapped))
	assert.Equal(t, ErrorTypeAllProvidersFailed, GetErrorType(wrapped))
}

func TestGetErrorType_NonDomainError(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}
