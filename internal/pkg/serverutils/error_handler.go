package serverutils

import (
	"errors"

	"procuredoc-be/internal/pkg/apperrors"
	"procuredoc-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into HTTP
// envelopes. Taxonomy errors render their user-safe message only; the
// technical detail goes to the log.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperrors.AsAppError(err); ok {
			status := statusForCategory(appErr.Category)
			log.Warn("HTTP", "Request failed", map[string]interface{}{
				"path":     ctx.Path(),
				"category": string(appErr.Category),
				"detail":   appErr.Detail,
			})
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}

func statusForCategory(c apperrors.Category) int {
	switch c {
	case apperrors.CategoryNotFound:
		return fiber.StatusNotFound
	case apperrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	case apperrors.CategoryValidationError:
		return fiber.StatusUnprocessableEntity
	case apperrors.CategoryTimeout:
		return fiber.StatusGatewayTimeout
	case apperrors.CategoryServiceUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
