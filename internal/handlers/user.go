package handlers

import (
	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// UpdateStatusRequest represents update status request body
type UpdateStatusRequest struct {
	Status interface{} `json:"status"`
}

// GetCurrentUser returns the user the server acts for
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	user, err := h.svc.CurrentUser(c.UserContext(), currentUser(c))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			jww.ERROR.Printf("Failed to load current user: %+v", err)
		}
		return fail(c, fiber.StatusNotFound, "User not found")
	}

	return c.JSON(user)
}

// UpdateStatus sets the current user's status and lastSeen
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid status")
	}

	status, ok := req.Status.(string)
	if !ok || status == "" {
		return fail(c, fiber.StatusBadRequest, "Invalid status")
	}

	if err := h.svc.UpdateUserStatus(c.UserContext(), currentUser(c), status); err != nil {
		jww.ERROR.Printf("Failed to update status: %+v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to update status")
	}

	return c.JSON(fiber.Map{"success": true})
}

// RegisterUser creates a new user
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req models.InsertUser
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.svc.RegisterUser(c.UserContext(), req)
	switch {
	case err == nil:
	case isValidation(err):
		return invalid(c, "Invalid user", err)
	case errors.Is(err, store.ErrConflict):
		return fail(c, fiber.StatusConflict, "Username already taken")
	default:
		jww.ERROR.Printf("Failed to register user: %+v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
