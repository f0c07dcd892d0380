package rates

import (
	"context"
	"strings"
	"time"

	"github.com/moneyfer/moneyfer/internal/latency"
)

// ExchangeRate is a point-in-time quote. It is never persisted.
type ExchangeRate struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

var table = map[string]float64{
	"USD-NGN": 1500,
	"USD-KES": 130,
	"USD-GHS": 12.5,
	"USD-MXN": 17.2,
	"USD-INR": 83.5,
	"USD-BRL": 5.1,
}

// Service quotes static exchange rates.
type Service struct {
	latency latency.Simulator
	now     func() time.Time
}

// NewService builds the rate service.
func NewService(sim latency.Simulator) *Service {
	return &Service{latency: sim, now: time.Now}
}

// GetRate quotes from→to. Unknown pairs quote 1.0. The destination country
// does not change the quote.
func (s *Service) GetRate(ctx context.Context, from, to, _ string) (ExchangeRate, error) {
	if err := s.latency.Wait(ctx, latency.OpGetRate); err != nil {
		return ExchangeRate{}, err
	}
	rate, ok := table[strings.ToUpper(from)+"-"+strings.ToUpper(to)]
	if !ok {
		rate = 1.0
	}
	return ExchangeRate{From: from, To: to, Rate: rate, Timestamp: s.now().UTC()}, nil
}
