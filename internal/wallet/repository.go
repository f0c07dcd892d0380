package wallet

import (
	"context"

	"github.com/moneyfer/moneyfer/internal/store"
)

// Repository persists the wallet list as a whole.
type Repository interface {
	List(ctx context.Context) ([]Wallet, bool)
	Save(ctx context.Context, wallets []Wallet)
}

// StoreRepository keeps wallets in the wallets slot.
type StoreRepository struct {
	store *store.Store
}

// NewStoreRepository builds a wallet repository backed by s.
func NewStoreRepository(s *store.Store) *StoreRepository {
	return &StoreRepository{store: s}
}

// List returns the stored wallets and whether the slot was populated.
func (r *StoreRepository) List(ctx context.Context) ([]Wallet, bool) {
	var wallets []Wallet
	if !r.store.Read(ctx, store.KeyWallets, &wallets) {
		return nil, false
	}
	return wallets, true
}

// Save overwrites the full wallet list.
func (r *StoreRepository) Save(ctx context.Context, wallets []Wallet) {
	r.store.Write(ctx, store.KeyWallets, wallets)
}
