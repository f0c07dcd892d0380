package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/appstate"
	"github.com/moneyfer/moneyfer/internal/transfer"
	"github.com/moneyfer/moneyfer/internal/wallet"
)

const recentTransfers = 3

// RegisterDashboardRoutes serves the home screen from the shared state.
func RegisterDashboardRoutes(r fiber.Router, state *appstate.State) {
	r.Get("/dashboard", func(c *fiber.Ctx) error {
		snap := state.Snapshot()
		if snap.Loading {
			return fiber.NewError(http.StatusServiceUnavailable, "still loading")
		}
		var user any
		if snap.User != nil {
			user = snap.User.Public()
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"user":          user,
			"wallets":       snap.Wallets,
			"total_balance": wallet.TotalValue(snap.Wallets),
			"summary":       transfer.Summarize(snap.Transfers),
			"recent":        transfer.Recent(snap.Transfers, recentTransfers),
		})
	})
}
