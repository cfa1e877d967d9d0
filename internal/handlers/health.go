package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	jww "github.com/spf13/jwalterweatherman"
)

// Health reports whether the server can reach its store
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		jww.WARN.Printf("Health check failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unavailable",
			"message": "Store is unreachable",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Chat API is running",
	})
}
