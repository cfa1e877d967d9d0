package handlers

import (
	"chatapp/server/internal/conversation"
	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// GetContacts returns the current user's contacts, most recent conversation
// first. A store failure is logged and answered with an empty list.
func (h *Handler) GetContacts(c *fiber.Ctx) error {
	contacts, err := h.svc.ListContacts(c.UserContext(), currentUser(c))
	if err != nil {
		jww.ERROR.Printf("Failed to list contacts: %+v", err)
		contacts = []models.ContactWithUser{}
	}

	return c.JSON(contacts)
}

// AddContact adds a user to the current user's contacts by username
func (h *Handler) AddContact(c *fiber.Ctx) error {
	var req models.AddContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	contact, err := h.svc.AddContact(c.UserContext(), currentUser(c), req)
	switch {
	case err == nil:
	case isValidation(err):
		return invalid(c, "Invalid contact", err)
	case errors.Is(err, conversation.ErrSelfContact):
		return fail(c, fiber.StatusBadRequest, "You cannot add yourself as a contact")
	case errors.Is(err, store.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, conversation.ErrContactExists), errors.Is(err, store.ErrConflict):
		return fail(c, fiber.StatusConflict, "Contact already added")
	default:
		jww.ERROR.Printf("Failed to add contact: %+v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to add contact")
	}

	return c.Status(fiber.StatusCreated).JSON(contact)
}
