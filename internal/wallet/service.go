package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/latency"
)

// Service exposes wallet balances.
type Service struct {
	repo    Repository
	latency latency.Simulator
	mu      sync.Mutex
}

// NewService builds a wallet service instance.
func NewService(repo Repository, sim latency.Simulator) *Service {
	return &Service{repo: repo, latency: sim}
}

// List returns the wallets, seeding the default set on first access.
func (s *Service) List(ctx context.Context) ([]Wallet, error) {
	if err := s.latency.Wait(ctx, latency.OpListWallets); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx), nil
}

// Update sets a wallet balance. Amount and value are both overwritten.
func (s *Service) Update(ctx context.Context, id string, amount float64) (Wallet, error) {
	if err := s.latency.Wait(ctx, latency.OpUpdateWallet); err != nil {
		return Wallet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wallets := s.load(ctx)
	for i := range wallets {
		if wallets[i].ID != id {
			continue
		}
		wallets[i].Amount = amount
		wallets[i].Value = amount
		s.repo.Save(ctx, wallets)
		return wallets[i], nil
	}
	return Wallet{}, fmt.Errorf("%w: wallet not found", apperr.ErrNotFound)
}

func (s *Service) load(ctx context.Context) []Wallet {
	if wallets, ok := s.repo.List(ctx); ok {
		return wallets
	}
	wallets := DefaultWallets()
	s.repo.Save(ctx, wallets)
	return wallets
}

// TotalValue sums the display value of every wallet.
func TotalValue(wallets []Wallet) float64 {
	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(decimal.NewFromFloat(w.Value))
	}
	return total.Round(2).InexactFloat64()
}
