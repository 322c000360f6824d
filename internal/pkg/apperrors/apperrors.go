package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Category identifies one bucket of the failure taxonomy. Each category maps to
// exactly one user-safe message; the technical detail never leaves the logs.
type Category string

const (
	CategoryRateLimit          Category = "rate_limit"
	CategoryTimeout            Category = "timeout"
	CategoryServiceUnavailable Category = "service_unavailable"
	CategoryValidationError    Category = "validation_error"
	CategoryNetworkError       Category = "network_error"
	CategoryNotFound           Category = "not_found"
	CategoryUnknown            Category = "unknown"
)

// userMessages holds the localized (pt-BR) text shown to end users, keyed by
// category. Keep these free of any technical vocabulary.
var userMessages = map[Category]string{
	CategoryRateLimit:          "Muitas solicitações em sequência. Aguarde alguns instantes e tente novamente.",
	CategoryTimeout:            "A geração demorou mais do que o esperado. Tente novamente em instantes.",
	CategoryServiceUnavailable: "O serviço de geração está temporariamente indisponível. Tente novamente em breve.",
	CategoryValidationError:    "O conteúdo gerado não atendeu aos critérios de validação. Revise os dados informados e tente novamente.",
	CategoryNetworkError:       "Falha de comunicação com o serviço de geração. Verifique sua conexão e tente novamente.",
	CategoryNotFound:           "O documento ou a seção solicitada não foi encontrada.",
	CategoryUnknown:            "Não foi possível gerar a seção. Tente novamente mais tarde.",
}

// UserMessage returns the localized user-safe message for a category.
func UserMessage(c Category) string {
	if msg, ok := userMessages[c]; ok {
		return msg
	}
	return userMessages[CategoryUnknown]
}

// AppError is the shaped error rethrown to the queue runtime and rendered by the
// HTTP error handler. Message is user-safe; Detail is the technical cause.
type AppError struct {
	Category Category
	Message  string
	Detail   string
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Detail)
	}
	return string(e.Category)
}

// New builds an AppError for a category, deriving the user message from the
// taxonomy table and keeping the technical detail separate.
func New(category Category, detail string) *AppError {
	return &AppError{
		Category: category,
		Message:  UserMessage(category),
		Detail:   detail,
	}
}

func Wrap(category Category, err error) *AppError {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return New(category, detail)
}

// NotFound is used by the gateway and worker for missing documents/sections.
func NotFound(what string) *AppError {
	return New(CategoryNotFound, fmt.Sprintf("%s not found", what))
}

// Forbidden marks a cross-tenant access attempt. It reuses the not_found user
// message so the response does not confirm the resource exists.
func Forbidden(what string) *AppError {
	return &AppError{
		Category: CategoryNotFound,
		Message:  UserMessage(CategoryNotFound),
		Detail:   fmt.Sprintf("%s belongs to another tenant", what),
	}
}

// RateLimited is returned by the admission guard, with retry guidance baked in.
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Category: CategoryRateLimit,
		Message:  UserMessage(CategoryRateLimit),
		Detail:   fmt.Sprintf("fixed window exhausted, retry after %ds", retryAfterSeconds),
	}
}

// AsAppError unwraps err into an *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Classify inspects an error coming back from the generation engine (or the
// surrounding IO) and buckets it into the taxonomy. Matching is intentionally
// broad: collaborator errors arrive as free text.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetworkError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "rate limit", "too many requests", "429", "quota"):
		return CategoryRateLimit
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return CategoryTimeout
	case containsAny(msg, "unavailable", "503", "502", "bad gateway", "overloaded"):
		return CategoryServiceUnavailable
	case containsAny(msg, "validation", "invalid content", "schema"):
		return CategoryValidationError
	case containsAny(msg, "not found", "404", "no rows", "record not found"):
		return CategoryNotFound
	case containsAny(msg, "connection refused", "connection reset", "no such host", "eof", "network"):
		return CategoryNetworkError
	default:
		return CategoryUnknown
	}
}

// IsRetryable reports whether the queue should redeliver a job that failed with
// this category. A missing target cannot heal by waiting and a validation
// rejection is deterministic for the same payload, so both fail immediately.
func IsRetryable(c Category) bool {
	switch c {
	case CategoryNotFound, CategoryValidationError:
		return false
	default:
		return true
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
