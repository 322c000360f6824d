package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{
			name: "nil error",
			err:  nil,
			want: CategoryUnknown,
		},
		{
			name: "app error passes through",
			err:  New(CategoryServiceUnavailable, "engine down"),
			want: CategoryServiceUnavailable,
		},
		{
			name: "wrapped app error passes through",
			err:  fmt.Errorf("handler: %w", New(CategoryRateLimit, "quota")),
			want: CategoryRateLimit,
		},
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: CategoryTimeout,
		},
		{
			name: "http 429 text",
			err:  errors.New("error from generation service, code 429, body too many requests"),
			want: CategoryRateLimit,
		},
		{
			name: "timed out text",
			err:  errors.New("request timed out after 120s"),
			want: CategoryTimeout,
		},
		{
			name: "bad gateway",
			err:  errors.New("error from generation service, code 502, body bad gateway"),
			want: CategoryServiceUnavailable,
		},
		{
			name: "validation rejection",
			err:  errors.New("validation failed: missing legal basis"),
			want: CategoryValidationError,
		},
		{
			name: "record not found",
			err:  errors.New("record not found"),
			want: CategoryNotFound,
		},
		{
			name: "connection refused",
			err:  errors.New("dial tcp 10.0.0.1:8081: connection refused"),
			want: CategoryNetworkError,
		},
		{
			name: "anything else",
			err:  errors.New("panic: runtime error"),
			want: CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []Category{CategoryRateLimit, CategoryTimeout, CategoryServiceUnavailable, CategoryNetworkError, CategoryUnknown}
	for _, c := range retryable {
		assert.True(t, IsRetryable(c), "category %s should be retryable", c)
	}

	fatal := []Category{CategoryNotFound, CategoryValidationError}
	for _, c := range fatal {
		assert.False(t, IsRetryable(c), "category %s should be fatal", c)
	}
}

func TestUserMessagesNeverLeakDetail(t *testing.T) {
	appErr := New(CategoryTimeout, "dial tcp: i/o timeout on 10.1.2.3")

	assert.Equal(t, UserMessage(CategoryTimeout), appErr.Message)
	assert.NotContains(t, appErr.Message, "10.1.2.3")
	assert.Contains(t, appErr.Error(), "i/o timeout")
}

func TestForbiddenMasksExistence(t *testing.T) {
	appErr := Forbidden("document")

	assert.Equal(t, CategoryNotFound, appErr.Category)
	assert.Equal(t, UserMessage(CategoryNotFound), appErr.Message)
	assert.Contains(t, appErr.Detail, "another tenant")
}

func TestRateLimitedCarriesRetryGuidance(t *testing.T) {
	appErr := RateLimited(60)

	assert.Equal(t, CategoryRateLimit, appErr.Category)
	assert.Contains(t, appErr.Detail, "60s")
}

func TestAsAppError(t *testing.T) {
	_, ok := AsAppError(errors.New("plain"))
	assert.False(t, ok)

	wrapped := fmt.Errorf("outer: %w", New(CategoryNotFound, "gone"))
	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CategoryNotFound, appErr.Category)
}
