package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter creates a rate limiting middleware keyed on the acting user,
// or the client IP when there is none
func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := GetUserID(c); userID != 0 {
				return "user:" + strconv.FormatInt(userID, 10)
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
			})
		},
	})
}

// StrictRateLimiter for account creation
func StrictRateLimiter() fiber.Handler {
	return RateLimiter(5, 15*time.Minute)
}

// ModerateRateLimiter for writes
func ModerateRateLimiter() fiber.Handler {
	return RateLimiter(60, time.Minute)
}

// UploadRateLimiter for file uploads
func UploadRateLimiter() fiber.Handler {
	return RateLimiter(10, 5*time.Minute)
}
