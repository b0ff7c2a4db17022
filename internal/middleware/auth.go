package middleware

import (
	"strings"

	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

const (
	localPlayerID = "player_id"
	localName     = "player_name"
)

// Verifier checks a session token and returns its subject and name.
type Verifier interface {
	Verify(token string) (playerID, name string, err error)
}

// Auth accepts a bearer header or, for event streams that cannot set
// headers, a token query parameter.
func Auth(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("token")
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			raw = strings.TrimPrefix(header, "Bearer ")
			if raw == header {
				return deny(c, fiber.StatusUnauthorized, model.CodeUnauthorized, "invalid authorization format")
			}
		}
		if raw == "" {
			return deny(c, fiber.StatusUnauthorized, model.CodeUnauthorized, "missing authorization")
		}

		playerID, name, err := v.Verify(raw)
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, model.CodeUnauthorized, "invalid or expired token")
		}
		c.Locals(localPlayerID, playerID)
		c.Locals(localName, name)
		return c.Next()
	}
}

// PlayerID returns the authenticated player of the request.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(localPlayerID).(string)
	return id
}

func PlayerName(c *fiber.Ctx) string {
	name, _ := c.Locals(localName).(string)
	return name
}

func AdminKey(expectedKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Admin-Key")
		if key == "" || key != expectedKey {
			return deny(c, fiber.StatusForbidden, model.CodeForbidden, "invalid admin key")
		}
		return c.Next()
	}
}

func deny(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(model.Failure(code, msg))
}
