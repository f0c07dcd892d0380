package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/auth"
	"github.com/moneyfer/moneyfer/internal/identity"
)

// SessionSource reports the stored session.
type SessionSource interface {
	CurrentSession(ctx context.Context) (identity.Session, bool)
}

// RequireSession validates the bearer token and checks it still belongs to the
// live session, so a token issued before logout stops working.
func RequireSession(tokens *auth.TokenService, sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		claims, err := tokens.Parse(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, apperr.Message(err))
		}

		session, ok := sessions.CurrentSession(c.UserContext())
		if !ok || session.UserID != claims.Subject {
			return fiber.NewError(http.StatusUnauthorized, "session ended")
		}

		c.Locals("user_id", claims.Subject)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}
