package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/transfer"
)

// RegisterTransferRoutes wires transfer endpoints. Creation goes through the
// idempotency guard.
func RegisterTransferRoutes(r fiber.Router, h *transfer.Handler, idempotency fiber.Handler) {
	r.Get("/transfers", h.List)
	r.Post("/transfers", idempotency, h.Create)
	r.Patch("/transfers/:transferId/status", h.UpdateStatus)
	r.Post("/transfers/:transferId/reverse", h.Reverse)
}
