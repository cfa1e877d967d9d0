// Package handlers exposes the conversation service over HTTP.
package handlers

import (
	"chatapp/server/internal/conversation"
	"chatapp/server/internal/middleware"
	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	svc       *conversation.Service
	store     store.Store
	uploadDir string
}

// New creates a Handler. Uploaded files are written below uploadDir.
func New(svc *conversation.Service, st store.Store, uploadDir string) *Handler {
	return &Handler{
		svc:       svc,
		store:     st,
		uploadDir: uploadDir,
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// invalid renders err as a 400 listing the offending fields when it is a
// models.ValidationErrors, or as a plain 400 otherwise.
func invalid(c *fiber.Ctx, message string, err error) error {
	var verrs models.ValidationErrors
	if !errors.As(err, &verrs) {
		return fail(c, fiber.StatusBadRequest, message)
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
		"errors":  verrs,
	})
}

func isValidation(err error) bool {
	var verrs models.ValidationErrors
	return errors.As(err, &verrs)
}

func currentUser(c *fiber.Ctx) int64 {
	return middleware.GetUserID(c)
}

func paramID(c *fiber.Ctx, key string) (int64, bool) {
	id, err := c.ParamsInt(key)
	if err != nil {
		return 0, false
	}
	return int64(id), true
}
