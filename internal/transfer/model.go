package transfer

import (
	"fmt"
	"time"

	"github.com/moneyfer/moneyfer/internal/apperr"
)

// Status is the lifecycle state of a transfer.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReversed   Status = "reversed"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusReversed}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusReversed:
		return true
	default:
		return false
	}
}

// ParseStatus converts user input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown transfer status %q", apperr.ErrValidation, raw)
	}
	return s, nil
}

// Transfer is one remittance. Lists are kept newest first.
type Transfer struct {
	ID               string    `json:"id"`
	Recipient        string    `json:"recipient"`
	RecipientAccount string    `json:"recipientAccount,omitempty"`
	Amount           float64   `json:"amount"`
	FromCurrency     string    `json:"fromCurrency"`
	ToCurrency       string    `json:"toCurrency"`
	Rate             float64   `json:"rate"`
	Fee              float64   `json:"fee"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	Country          string    `json:"country"`
	Method           string    `json:"method"`
	Route            string    `json:"route"`
	TxHash           string    `json:"txHash,omitempty"`
}

// Draft holds the caller-supplied fields of a new transfer.
type Draft struct {
	Recipient        string  `json:"recipient" validate:"required"`
	RecipientAccount string  `json:"recipientAccount"`
	Amount           float64 `json:"amount" validate:"gt=0"`
	FromCurrency     string  `json:"fromCurrency" validate:"required"`
	ToCurrency       string  `json:"toCurrency" validate:"required"`
	Rate             float64 `json:"rate"`
	Fee              float64 `json:"fee"`
	Country          string  `json:"country"`
	Method           string  `json:"method"`
	Route            string  `json:"route"`
	TxHash           string  `json:"txHash"`
}
