// Package appstate holds the process-wide view of the signed-in user, their
// transfers and their wallets, loaded from the Domain APIs and kept fresh by
// explicit refreshes.
package appstate

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/moneyfer/moneyfer/internal/identity"
	"github.com/moneyfer/moneyfer/internal/transfer"
	"github.com/moneyfer/moneyfer/internal/wallet"
)

// Identity is the subset of the auth API the state depends on.
type Identity interface {
	CurrentUser(ctx context.Context) (identity.User, bool, error)
	Logout(ctx context.Context) error
}

// Wallets lists wallet balances.
type Wallets interface {
	List(ctx context.Context) ([]wallet.Wallet, error)
}

// Transfers lists transfers.
type Transfers interface {
	List(ctx context.Context) ([]transfer.Transfer, error)
}

// Snapshot is a point-in-time copy of the state.
type Snapshot struct {
	User      *identity.User
	Transfers []transfer.Transfer
	Wallets   []wallet.Wallet
	Loading   bool
}

// State is created once at startup and shared by reference.
type State struct {
	identity  Identity
	wallets   Wallets
	transfers Transfers
	logger    *slog.Logger

	mu           sync.RWMutex
	user         *identity.User
	transferList []transfer.Transfer
	walletList   []wallet.Wallet
	loading      bool
	closed       bool

	loadOnce sync.Once
	ready    chan struct{}
}

// New builds an empty state in the loading phase.
func New(ids Identity, wallets Wallets, transfers Transfers, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		identity:     ids,
		wallets:      wallets,
		transfers:    transfers,
		logger:       logger,
		transferList: []transfer.Transfer{},
		walletList:   []wallet.Wallet{},
		loading:      true,
		ready:        make(chan struct{}),
	}
}

// Load fetches the current user, transfers and wallets concurrently. It runs
// once; later calls wait for the first to finish. The loading flag clears when
// every fetch has settled. A failure is logged and leaves the state empty.
func (s *State) Load(ctx context.Context) error {
	var loadErr error
	s.loadOnce.Do(func() {
		loadErr = s.load(ctx)
	})
	select {
	case <-s.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	return loadErr
}

func (s *State) load(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)
	}()

	var (
		user      identity.User
		signedIn  bool
		transfers []transfer.Transfer
		wallets   []wallet.Wallet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, signedIn, err = s.identity.CurrentUser(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		transfers, err = s.transfers.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		wallets, err = s.wallets.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load app data", slog.Any("error", err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if signedIn {
		s.user = &user
	}
	s.transferList = transfers
	s.walletList = wallets
	return nil
}

// Loading reports whether the startup load is still in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready is closed once the startup load has settled.
func (s *State) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Transfers: make([]transfer.Transfer, len(s.transferList)),
		Wallets:   make([]wallet.Wallet, len(s.walletList)),
		Loading:   s.loading,
	}
	copy(snap.Transfers, s.transferList)
	copy(snap.Wallets, s.walletList)
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// SetUser switches the signed-in user. nil means logout: cached lists are
// cleared and the session is ended. A user triggers a refresh of both lists.
func (s *State) SetUser(ctx context.Context, user *identity.User) {
	if user == nil {
		s.mu.Lock()
		s.user = nil
		s.transferList = []transfer.Transfer{}
		s.walletList = []wallet.Wallet{}
		s.mu.Unlock()
		if err := s.identity.Logout(ctx); err != nil {
			s.logger.Error("logout failed", slog.Any("error", err))
		}
		return
	}

	u := *user
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	_ = s.RefreshTransfers(ctx)
	_ = s.RefreshWallets(ctx)
}

// AddTransfer prepends t to the cached list ahead of the next refresh.
func (s *State) AddTransfer(t transfer.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.transferList = append([]transfer.Transfer{t}, s.transferList...)
}

// RefreshTransfers replaces the cached transfers. On failure the error is
// logged and returned, and the cached list is kept.
func (s *State) RefreshTransfers(ctx context.Context) error {
	transfers, err := s.transfers.List(ctx)
	if err != nil {
		s.logger.Error("failed to refresh transfers", slog.Any("error", err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.transferList = transfers
	}
	return nil
}

// RefreshWallets replaces the cached wallets. On failure the error is logged
// and returned, and the cached list is kept.
func (s *State) RefreshWallets(ctx context.Context) error {
	wallets, err := s.wallets.List(ctx)
	if err != nil {
		s.logger.Error("failed to refresh wallets", slog.Any("error", err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.walletList = wallets
	}
	return nil
}

// Close drops cached data. Results of calls still in flight are discarded.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.user = nil
	s.transferList = []transfer.Transfer{}
	s.walletList = []wallet.Wallet{}
}
