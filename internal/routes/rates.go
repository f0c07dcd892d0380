package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/rates"
)

// RegisterRateRoutes wires the public quote endpoints.
func RegisterRateRoutes(r fiber.Router, h *rates.Handler) {
	r.Get("/rates", h.Rate)
	r.Get("/countries", h.Countries)
}
