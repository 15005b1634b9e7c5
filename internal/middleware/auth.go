package middleware

import (
	"exohub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Identity headers set by the auth gateway in front of this service. Token
// verification and session handling live there; we only trust the headers.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

const actorLocal = "actor"

// Actor is the authenticated caller as resolved by the gateway.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// Identity parses the gateway identity headers into Locals. Requests without
// them proceed anonymously; RequireAuth rejects those later.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Get(HeaderUserID))
		if err != nil {
			return c.Next()
		}
		role := c.Get(HeaderUserRole)
		if role == "" {
			role = "trader"
		}
		c.Locals(actorLocal, &Actor{UserID: id, Role: role})
		return c.Next()
	}
}

// RequireAuth ensures an actor was resolved. Returns 401 with the standard
// error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetActor(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetActor returns the resolved actor from Locals (nil when anonymous).
func GetActor(c *fiber.Ctx) *Actor {
	if a, ok := c.Locals(actorLocal).(*Actor); ok {
		return a
	}
	return nil
}
