package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a liveness/readiness endpoint. The process is
// ready once the startup state load has settled.
func RegisterHealthRoutes(fa *fiber.App, d Deps) {
	fa.Get("/healthz", func(c *fiber.Ctx) error {
		storeStatus := "ok"
		if d.Pinger != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := d.Pinger.Ping(ctx); err != nil {
				storeStatus = err.Error()
			}
		}
		stateStatus := "ready"
		if d.App.State.Loading() {
			stateStatus = "loading"
		}

		status := http.StatusOK
		if storeStatus != "ok" || stateStatus != "ready" {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{"store": storeStatus, "backend": d.Cfg.StoreBackend, "state": stateStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
