package routes

import (
	"chatapp/server/internal/handlers"
	"chatapp/server/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes. Every request acts for
// currentUserID.
func SetupRoutes(app *fiber.App, h *handlers.Handler, currentUserID int64) {
	api := app.Group("/api", middleware.CurrentUser(currentUserID))

	api.Get("/health", h.Health)

	// User routes
	api.Get("/user/current", h.GetCurrentUser)
	api.Patch("/user/status", middleware.ModerateRateLimiter(), h.UpdateStatus)
	api.Post("/users", middleware.StrictRateLimiter(), h.RegisterUser)

	// Contact routes
	contacts := api.Group("/contacts")
	contacts.Get("/", h.GetContacts)
	contacts.Post("/", middleware.ModerateRateLimiter(), h.AddContact)

	// Message routes
	messages := api.Group("/messages")
	messages.Post("/", middleware.ModerateRateLimiter(), h.SendMessage)
	messages.Get("/:contactId", h.GetMessages)
	messages.Patch("/:messageId/read", h.MarkAsRead)
	messages.Patch("/:messageId/delivered", h.MarkAsDelivered)

	// Upload routes
	api.Post("/upload/:kind", middleware.UploadRateLimiter(), h.Upload)
	app.Get("/uploads/:type/:filename", h.GetFile)

	api.Get("/emojis", h.GetEmojis)
}
