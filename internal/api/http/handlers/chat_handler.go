package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workaid/internal/api/dto"
	"github.com/spec-kit/workaid/internal/service"
)

// ChatHandler exposes the assistant endpoint.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chatService}
}

// Ask POST /chat.
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Question) == "" {
		return fiber.NewError(http.StatusBadRequest, "question required")
	}

	answer, err := h.chat.Ask(c.Context(), req.Question)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Answer: answer}})
}
