package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/wizard"
)

// RegisterSendRoutes wires the send-money sessions.
func RegisterSendRoutes(r fiber.Router, h *wizard.Handler) {
	r.Post("/send", h.Start)
	r.Get("/send/:sessionId", h.Get)
	r.Post("/send/:sessionId/actions", h.Act)
}
