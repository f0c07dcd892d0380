package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/latency"
)

// Service records transfers and their status changes.
type Service struct {
	repo     Repository
	latency  latency.Simulator
	validate *validator.Validate
	now      func() time.Time
	mu       sync.Mutex
}

// NewService constructs a transfer service.
func NewService(repo Repository, sim latency.Simulator) *Service {
	return &Service{repo: repo, latency: sim, validate: validator.New(), now: time.Now}
}

// List returns every transfer, newest first.
func (s *Service) List(ctx context.Context) ([]Transfer, error) {
	if err := s.latency.Wait(ctx, latency.OpListTransfers); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.List(ctx), nil
}

// Create stores a new pending transfer at the head of the list.
func (s *Service) Create(ctx context.Context, draft Draft) (Transfer, error) {
	if err := s.latency.Wait(ctx, latency.OpCreateTransfer); err != nil {
		return Transfer{}, err
	}
	if err := s.validate.Struct(draft); err != nil {
		return Transfer{}, draftError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.repo.List(ctx)
	now := s.now().UTC()
	t := Transfer{
		ID:               nextID(existing, now),
		Recipient:        draft.Recipient,
		RecipientAccount: draft.RecipientAccount,
		Amount:           draft.Amount,
		FromCurrency:     draft.FromCurrency,
		ToCurrency:       draft.ToCurrency,
		Rate:             draft.Rate,
		Fee:              draft.Fee,
		Status:           StatusPending,
		CreatedAt:        now,
		Country:          draft.Country,
		Method:           draft.Method,
		Route:            draft.Route,
		TxHash:           draft.TxHash,
	}

	s.repo.Save(ctx, append([]Transfer{t}, existing...))
	return t, nil
}

// UpdateStatus replaces the status of one transfer.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Transfer, error) {
	if err := s.latency.Wait(ctx, latency.OpUpdateStatus); err != nil {
		return Transfer{}, err
	}
	if !status.Valid() {
		return Transfer{}, fmt.Errorf("%w: unknown transfer status %q", apperr.ErrValidation, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	transfers := s.repo.List(ctx)
	for i := range transfers {
		if transfers[i].ID != id {
			continue
		}
		transfers[i].Status = status
		s.repo.Save(ctx, transfers)
		return transfers[i], nil
	}
	return Transfer{}, fmt.Errorf("%w: transfer not found", apperr.ErrNotFound)
}

// Reverse marks a transfer as reversed.
func (s *Service) Reverse(ctx context.Context, id string) (Transfer, error) {
	return s.UpdateStatus(ctx, id, StatusReversed)
}

// nextID derives an identifier from the creation time, stepping forward a
// millisecond at a time until it is unused.
func nextID(existing []Transfer, now time.Time) string {
	taken := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		taken[t.ID] = struct{}{}
	}
	ms := now.UnixMilli()
	for {
		id := fmt.Sprintf("transfer-%d", ms)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

func draftError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", apperr.ErrValidation, field)
	case "gt":
		return fmt.Errorf("%w: %s must be positive", apperr.ErrValidation, field)
	default:
		return fmt.Errorf("%w: %s is invalid", apperr.ErrValidation, field)
	}
}
