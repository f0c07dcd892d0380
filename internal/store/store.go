package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// Key names one of the storage slots.
type Key string

const (
	KeyUser      Key = "moneyfer_user"
	KeySession   Key = "moneyfer_session"
	KeyWallets   Key = "moneyfer_wallets"
	KeyTransfers Key = "moneyfer_transfers"
)

// ErrNoRecord is returned by backends when a slot is empty.
var ErrNoRecord = errors.New("no record")

// Backend persists raw slot payloads. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store encodes slot values as JSON on top of a Backend. Reads report absence
// instead of failing and writes log their failures instead of returning them,
// so callers only ever see "present" or "absent".
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New wraps backend. A nil backend behaves like an environment without storage.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Read decodes the slot into dest and reports whether a value was present.
func (s *Store) Read(ctx context.Context, key Key, dest any) bool {
	if s == nil || s.backend == nil {
		return false
	}
	raw, err := s.backend.Get(ctx, string(key))
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			s.logger.Warn("storage read failed", slog.String("key", string(key)), slog.Any("error", err))
		}
		return false
	}
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("storage decode failed", slog.String("key", string(key)), slog.Any("error", err))
		return false
	}
	return true
}

// Write encodes value into the slot.
func (s *Store) Write(ctx context.Context, key Key, value any) {
	if s == nil || s.backend == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("failed to encode storage value", slog.String("key", string(key)), slog.Any("error", err))
		return
	}
	if err := s.backend.Put(ctx, string(key), raw); err != nil {
		s.logger.Error("failed to save to storage", slog.String("key", string(key)), slog.Any("error", err))
	}
}

// Remove clears the slot. Missing slots are ignored.
func (s *Store) Remove(ctx context.Context, key Key) {
	if s == nil || s.backend == nil {
		return
	}
	if err := s.backend.Delete(ctx, string(key)); err != nil && !errors.Is(err, ErrNoRecord) {
		s.logger.Error("failed to remove from storage", slog.String("key", string(key)), slog.Any("error", err))
	}
}
