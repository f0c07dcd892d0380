// Package app assembles the domain services around one store and owns their
// lifecycle: Start loads the shared state, Close tears it down.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/moneyfer/moneyfer/internal/appstate"
	"github.com/moneyfer/moneyfer/internal/auth"
	"github.com/moneyfer/moneyfer/internal/identity"
	"github.com/moneyfer/moneyfer/internal/latency"
	"github.com/moneyfer/moneyfer/internal/notification"
	"github.com/moneyfer/moneyfer/internal/rates"
	"github.com/moneyfer/moneyfer/internal/schedule"
	"github.com/moneyfer/moneyfer/internal/store"
	"github.com/moneyfer/moneyfer/internal/transfer"
	"github.com/moneyfer/moneyfer/internal/wallet"
	"github.com/moneyfer/moneyfer/internal/wizard"
)

// Options tune the services.
type Options struct {
	Name         string
	JWTSecret    string
	SessionTTL   time.Duration
	LatencyScale float64
	Scheduler    schedule.Scheduler
}

// App is the application context shared by the HTTP layer.
type App struct {
	Store     *store.Store
	Identity  *identity.Service
	Wallets   *wallet.Service
	Transfers *transfer.Service
	Rates     *rates.Service
	State     *appstate.State
	Tokens    *auth.TokenService
	Notifier  notification.Notifier
	Wizards   *wizard.Registry

	logger *slog.Logger
}

// New wires every service onto backend.
func New(backend store.Backend, opts Options, logger *slog.Logger) *App {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = identity.DefaultSessionTTL
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.Real{}
	}
	sim := latency.New(opts.LatencyScale)
	st := store.New(backend, logger)

	a := &App{
		Store:     st,
		Identity:  identity.NewService(identity.NewStoreRepository(st), sim, opts.SessionTTL),
		Wallets:   wallet.NewService(wallet.NewStoreRepository(st), sim),
		Transfers: transfer.NewService(transfer.NewStoreRepository(st), sim),
		Rates:     rates.NewService(sim),
		Tokens:    auth.NewTokenService(opts.JWTSecret, opts.Name),
		Notifier:  notification.NewLoggerNotifier(logger),
		logger:    logger,
	}
	a.State = appstate.New(a.Identity, a.Wallets, a.Transfers, logger)
	a.Wizards = wizard.NewRegistry(func(owner string) wizard.Deps {
		deps := wizard.Deps{
			Rates:     a.Rates,
			Transfers: a.Transfers,
			State:     a.State,
			Notifier:  a.Notifier,
			Scheduler: opts.Scheduler,
			Logger:    logger.With(slog.String("component", "wizard"), slog.String("user_id", owner)),
		}
		if user := a.State.Snapshot().User; user != nil {
			deps.Destination = user.Email
		}
		return deps
	})
	return a
}

// Start loads the shared state. A load failure is logged and the process
// keeps serving with empty state.
func (a *App) Start(ctx context.Context) {
	if err := a.State.Load(ctx); err != nil {
		a.logger.Warn("starting with empty state", slog.Any("error", err))
		return
	}
	a.logger.Info("state loaded", slog.Bool("signed_in", a.State.Snapshot().User != nil))
}

// Close ends open wizards and drops cached state.
func (a *App) Close() {
	a.Wizards.Close()
	a.State.Close()
}

// RefreshWallets re-reads wallets into the shared state.
func (a *App) RefreshWallets(ctx context.Context) {
	_ = a.State.RefreshWallets(ctx)
}

// TransferChanged records a transfer mutation in the shared state.
func (a *App) TransferChanged(ctx context.Context, created *transfer.Transfer) {
	if created != nil {
		a.State.AddTransfer(*created)
	}
	_ = a.State.RefreshTransfers(ctx)
}

// LoggedOut drops the user's wizard sessions.
func (a *App) LoggedOut(userID string) {
	a.Wizards.RemoveOwner(userID)
}
