package http

import (
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/messaging"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler maneja el hilo de mensajes por proyecto.
type MessageHandler struct {
	uc *messaging.UseCase
}

// NewMessageHandler construye el handler de mensajería.
func NewMessageHandler(uc *messaging.UseCase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

// Post publica un mensaje en el hilo del proyecto.
// POST /api/projects/:id/messages
func (h *MessageHandler) Post(c *fiber.Ctx) error {
	var in dto.PostMessageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	message, err := h.uc.PostMessage(c.Context(), SessionFrom(c), c.Params("id"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// List lista el hilo del proyecto.
// GET /api/projects/:id/messages
func (h *MessageHandler) List(c *fiber.Ctx) error {
	messages, err := h.uc.ListMessages(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(messages)
}
