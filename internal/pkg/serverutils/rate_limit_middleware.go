package serverutils

import (
	"procuredoc-be/internal/pkg/apperrors"
	"procuredoc-be/internal/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// RateLimitMiddleware guards a route group with the fixed-window limiter. The
// tracking key prefers the authenticated identity and falls back to the client
// address; the route path keeps counters independent between guarded routes.
func RateLimitMiddleware(limiter *ratelimit.Limiter) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, _ := ctx.Locals("user_id").(string)
		key := ratelimit.KeyFor(identity, ctx.IP())

		if !limiter.Allow(ctx.Context(), ctx.Route().Path, key) {
			return apperrors.RateLimited(limiter.RetryAfterSeconds())
		}
		return ctx.Next()
	}
}
