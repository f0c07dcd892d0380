package identity

import (
	"context"

	"github.com/moneyfer/moneyfer/internal/store"
)

// Repository persists the user and session slots.
type Repository interface {
	User(ctx context.Context) (User, bool)
	SaveUser(ctx context.Context, user User)
	Session(ctx context.Context) (Session, bool)
	SaveSession(ctx context.Context, session Session)
	DeleteSession(ctx context.Context)
}

// StoreRepository implements Repository on top of the slot store.
type StoreRepository struct {
	store *store.Store
}

// NewStoreRepository builds an identity repository backed by s.
func NewStoreRepository(s *store.Store) *StoreRepository {
	return &StoreRepository{store: s}
}

// User loads the stored user, if any.
func (r *StoreRepository) User(ctx context.Context) (User, bool) {
	var user User
	if !r.store.Read(ctx, store.KeyUser, &user) {
		return User{}, false
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, true
}

// SaveUser overwrites the user slot.
func (r *StoreRepository) SaveUser(ctx context.Context, user User) {
	r.store.Write(ctx, store.KeyUser, user)
}

// Session loads the stored session, if any.
func (r *StoreRepository) Session(ctx context.Context) (Session, bool) {
	var session Session
	if !r.store.Read(ctx, store.KeySession, &session) {
		return Session{}, false
	}
	return session, true
}

// SaveSession overwrites the session slot.
func (r *StoreRepository) SaveSession(ctx context.Context, session Session) {
	r.store.Write(ctx, store.KeySession, session)
}

// DeleteSession clears the session slot.
func (r *StoreRepository) DeleteSession(ctx context.Context) {
	r.store.Remove(ctx, store.KeySession)
}
