package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// CurrentUser attaches the acting user to every request. There is no login:
// the server acts for one configured user.
func CurrentUser(userID int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// GetUserID gets user ID from context
func GetUserID(c *fiber.Ctx) int64 {
	userID, ok := c.Locals(userIDKey).(int64)
	if !ok {
		return 0
	}
	return userID
}
