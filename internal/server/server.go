package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/moneyfer/moneyfer/internal/app"
	"github.com/moneyfer/moneyfer/internal/config"
	"github.com/moneyfer/moneyfer/internal/infra"
	"github.com/moneyfer/moneyfer/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, application *app.App, res *infra.Resources, logger *slog.Logger) (*Server, error) {
	fa := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	deps := routes.Deps{Cfg: cfg, App: application, Logger: logger}
	if res != nil {
		deps.Cache = res.Cache
		deps.Pinger = res
	}
	if err := routes.Setup(fa, deps); err != nil {
		return nil, err
	}

	return &Server{app: fa, cfg: cfg}, nil
}

// Handler exposes the Fiber app for in-process tests.
func (s *Server) Handler() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders every error as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	msg := err.Error()
	if code == http.StatusInternalServerError && fe == nil {
		msg = "internal error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
