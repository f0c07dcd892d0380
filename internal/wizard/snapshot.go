package wizard

import (
	"github.com/shopspring/decimal"

	"github.com/moneyfer/moneyfer/internal/rates"
)

// Summary is what the confirm step shows before the transfer is recorded.
type Summary struct {
	Recipient     string  `json:"recipient"`
	Account       string  `json:"account"`
	Amount        float64 `json:"amount"`
	Country       string  `json:"country"`
	Currency      string  `json:"currency"`
	Method        string  `json:"method"`
	Bank          string  `json:"bank,omitempty"`
	Route         string  `json:"route"`
	Rate          float64 `json:"rate"`
	Fee           float64 `json:"fee"`
	ReceiveAmount float64 `json:"receiveAmount"`
	Payment       string  `json:"payment"`
}

// Snapshot is a read-only view of a wizard for rendering.
type Snapshot struct {
	Step             Step             `json:"step"`
	Query            string           `json:"query,omitempty"`
	Countries        []rates.Country  `json:"countries,omitempty"`
	Country          string           `json:"country,omitempty"`
	Currency         string           `json:"currency,omitempty"`
	Methods          []string         `json:"methods,omitempty"`
	Method           string           `json:"method,omitempty"`
	Banks            []string         `json:"banks,omitempty"`
	Bank             string           `json:"bank,omitempty"`
	RecipientName    string           `json:"recipientName,omitempty"`
	RecipientAccount string           `json:"recipientAccount,omitempty"`
	Amount           string           `json:"amount,omitempty"`
	Rate             float64          `json:"rate,omitempty"`
	RateLoading      bool             `json:"rateLoading"`
	RateWarning      string           `json:"rateWarning,omitempty"`
	Routes           []Route          `json:"routes,omitempty"`
	Route            string           `json:"route,omitempty"`
	Payments         []string         `json:"payments,omitempty"`
	Payment          string           `json:"payment,omitempty"`
	DepositAddress   string           `json:"depositAddress,omitempty"`
	Awaiting         bool             `json:"awaitingConfirmation,omitempty"`
	ProcessingSteps  []ProcessingStep `json:"processingSteps,omitempty"`
	ProcessingIndex  int              `json:"processingIndex"`
	Summary          *Summary         `json:"summary,omitempty"`
	ReceiptID        string           `json:"receiptId,omitempty"`
	Message          string           `json:"message,omitempty"`
	Submitting       bool             `json:"submitting"`
	Completed        bool             `json:"completed"`
	TransferID       string           `json:"transferId,omitempty"`
}

// Snapshot copies the wizard state, including the lists each step offers.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		Step:             w.step,
		Query:            w.query,
		Countries:        rates.SearchCountries(w.query),
		Country:          w.country,
		Method:           w.method,
		Bank:             w.bank,
		RecipientName:    w.recipientName,
		RecipientAccount: w.recipientAccount,
		Amount:           w.amountInput,
		Rate:             w.rate,
		RateLoading:      w.rateLoading,
		RateWarning:      w.rateWarning,
		Route:            w.route,
		Payments:         Payments(),
		Payment:          w.payment,
		ProcessingSteps:  ProcessingSteps(),
		ProcessingIndex:  w.processingIndex,
		ReceiptID:        w.receiptID,
		Message:          w.message,
		Submitting:       w.submitting,
		Completed:        w.completed,
	}
	if w.country != "" {
		snap.Currency = rates.CurrencyFor(w.country)
		snap.Methods = Methods(w.country)
	}
	if RequiresBank(w.country, w.method) {
		snap.Banks = Banks()
	}
	if w.rate > 0 {
		snap.Routes = Routes(w.rate)
	}
	if w.payment == PaymentUSDC {
		snap.DepositAddress = DepositAddress
		snap.Awaiting = w.step == StepCrypto
	}
	if w.step == StepConfirm {
		snap.Summary = w.summaryLocked()
	}
	if w.created != nil {
		snap.TransferID = w.created.ID
	}
	return snap
}

func (w *Wizard) summaryLocked() *Summary {
	s := &Summary{
		Recipient: w.recipientName,
		Account:   w.recipientAccount,
		Amount:    w.amount,
		Country:   w.country,
		Currency:  rates.CurrencyFor(w.country),
		Method:    w.method,
		Bank:      w.bank,
		Rate:      w.rate,
		Payment:   w.payment,
	}
	if route, ok := findRoute(w.rate, w.route); ok {
		s.Route = route.Name
		s.Rate = route.Rate
		s.Fee = route.Fee
	}
	s.ReceiveAmount, _ = decimal.NewFromFloat(s.Amount).
		Mul(decimal.NewFromFloat(s.Rate)).
		Round(2).
		Float64()
	return s
}
