package handlers

import (
	"encoding/json"

	"chatapp/server/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// GetMessages returns the conversation between the current user and
// :contactId, oldest first. A store failure is logged and answered with an
// empty list.
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	contactID, ok := paramID(c, "contactId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid contact ID")
	}

	messages, err := h.svc.Thread(c.UserContext(), currentUser(c), contactID)
	if err != nil {
		jww.ERROR.Printf("Failed to load messages with %d: %+v", contactID, err)
		messages = []models.MessageWithSender{}
	}

	return c.JSON(messages)
}

// SendMessage sends a message from the current user
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req models.InsertMessage
	if err := c.BodyParser(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return invalid(c, "Invalid message", models.ValidationErrors{{
				Field:   typeErr.Field,
				Message: "Expected " + typeErr.Type.String(),
			}})
		}
		return fail(c, fiber.StatusBadRequest, "Invalid message")
	}

	message, err := h.svc.SendMessage(c.UserContext(), currentUser(c), req)
	if err != nil {
		if isValidation(err) {
			return invalid(c, "Invalid message", err)
		}
		jww.ERROR.Printf("Failed to send message: %+v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to send message")
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// MarkAsRead marks :messageId as read
func (h *Handler) MarkAsRead(c *fiber.Ctx) error {
	messageID, ok := paramID(c, "messageId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid message ID")
	}

	if err := h.svc.MarkAsRead(c.UserContext(), messageID); err != nil {
		jww.ERROR.Printf("Failed to mark message %d as read: %+v", messageID, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to mark message as read")
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkAsDelivered marks :messageId as delivered
func (h *Handler) MarkAsDelivered(c *fiber.Ctx) error {
	messageID, ok := paramID(c, "messageId")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid message ID")
	}

	if err := h.svc.MarkAsDelivered(c.UserContext(), messageID); err != nil {
		jww.ERROR.Printf("Failed to mark message %d as delivered: %+v", messageID, err)
		return fail(c, fiber.StatusInternalServerError, "Failed to mark message as delivered")
	}

	return c.JSON(fiber.Map{"success": true})
}
