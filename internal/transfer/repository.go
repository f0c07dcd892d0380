package transfer

import (
	"context"

	"github.com/moneyfer/moneyfer/internal/store"
)

// Repository persists the transfer list as a whole.
type Repository interface {
	List(ctx context.Context) []Transfer
	Save(ctx context.Context, transfers []Transfer)
}

// StoreRepository keeps transfers in the transfers slot.
type StoreRepository struct {
	store *store.Store
}

// NewStoreRepository builds a transfer repository backed by s.
func NewStoreRepository(s *store.Store) *StoreRepository {
	return &StoreRepository{store: s}
}

// List returns the stored transfers, or an empty list.
func (r *StoreRepository) List(ctx context.Context) []Transfer {
	var transfers []Transfer
	if !r.store.Read(ctx, store.KeyTransfers, &transfers) {
		return []Transfer{}
	}
	for i := range transfers {
		transfers[i].CreatedAt = transfers[i].CreatedAt.UTC()
	}
	return transfers
}

// Save overwrites the full transfer list.
func (r *StoreRepository) Save(ctx context.Context, transfers []Transfer) {
	r.store.Write(ctx, store.KeyTransfers, transfers)
}
