package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallets", h.List)
	r.Put("/wallets/:walletId", h.Update)
}
