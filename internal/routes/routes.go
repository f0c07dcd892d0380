package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/moneyfer/moneyfer/internal/app"
	"github.com/moneyfer/moneyfer/internal/auth"
	"github.com/moneyfer/moneyfer/internal/config"
	"github.com/moneyfer/moneyfer/internal/middleware"
	"github.com/moneyfer/moneyfer/internal/rates"
	"github.com/moneyfer/moneyfer/internal/transfer"
	"github.com/moneyfer/moneyfer/internal/wallet"
	"github.com/moneyfer/moneyfer/internal/wizard"
)

// Pinger checks external connections for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	App    *app.App
	Cache  *redis.Client
	Pinger Pinger
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(fa *fiber.App, d Deps) error {
	fa.Use(recover.New())
	fa.Use(middleware.RequestID())
	fa.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(fa, d)

	a := d.App
	authHandler := auth.NewHandler(a.Identity, a.Tokens, a.State, a.Notifier, d.Logger, a.LoggedOut)
	walletHandler := wallet.NewHandler(a.Wallets, a.RefreshWallets)
	transferHandler := transfer.NewHandler(a.Transfers, a.TransferChanged)
	rateHandler := rates.NewHandler(a.Rates)
	sendHandler := wizard.NewHandler(a.Wizards)

	api := fa.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("request_id").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, 5))
	RegisterRateRoutes(api, rateHandler)

	// Protected routes
	protected := api.Group("", middleware.RequireSession(a.Tokens, a.Identity))
	RegisterProfileRoutes(protected, authHandler)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterTransferRoutes(protected, transferHandler, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	RegisterDashboardRoutes(protected, a.State)
	RegisterSendRoutes(protected, sendHandler)

	return nil
}
