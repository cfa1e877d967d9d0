package handlers

import (
	"chatapp/server/internal/emoji"

	"github.com/gofiber/fiber/v2"
)

const maxEmojiResults = 50

// GetEmojis returns the emoji picker catalog. ?group= narrows it to one
// group and ?q= searches by name instead.
func (h *Handler) GetEmojis(c *fiber.Ctx) error {
	if q := c.Query("q"); q != "" {
		return c.JSON(emoji.Search(q, c.QueryInt("limit", maxEmojiResults)))
	}

	if name := c.Query("group"); name != "" {
		group, ok := emoji.ByGroup(name)
		if !ok {
			return fail(c, fiber.StatusNotFound, "Unknown emoji group")
		}
		return c.JSON([]emoji.Group{group})
	}

	return c.JSON(emoji.Catalog())
}
