package middleware

import (
	"context"
	"strings"

	"storefront/internal/auth"
	"storefront/pkg/httperror"

	"github.com/gofiber/fiber/v2"
)

// NewAuthMiddleware verifies the bearer token and places the caller's
// identity into the user context, where handlers read it back out.
func NewAuthMiddleware(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get("Authorization"))

		token, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok || token == "" {
			return unauthorized(c, "Missing bearer token")
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		userCtx := c.UserContext()
		if userCtx == nil {
			userCtx = context.Background()
		}

		userCtx = context.WithValue(userCtx, "UserID", claims.UserID)
		userCtx = context.WithValue(userCtx, "UserEmail", claims.Email)

		c.SetUserContext(userCtx)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	err := httperror.Unauthorized(
		"storefront.auth.unauthorized",
		message,
		nil,
	)

	return c.Status(err.Status).JSON(fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	})
}
