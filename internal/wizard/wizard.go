// Package wizard drives the send-money flow: a linear state machine from
// destination country to confirmation, ending in a recorded transfer.
package wizard

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/notification"
	"github.com/moneyfer/moneyfer/internal/rates"
	"github.com/moneyfer/moneyfer/internal/schedule"
	"github.com/moneyfer/moneyfer/internal/transfer"
)

const (
	msgSelectCountry   = "Please select a country"
	msgSelectMethod    = "Please select a payout method"
	msgSelectBank      = "Please select a bank"
	msgRecipientName   = "Recipient name must be at least 2 characters"
	msgAccountNumber   = "Account number must be at least 4 characters"
	msgWalletNumber    = "Mobile wallet number must be 10 digits"
	msgRatePending     = "Exchange rate is still loading"
	msgAmount          = "Please enter a valid amount"
	msgSelectRoute     = "Please select a route"
	msgSelectPayment   = "Please select a payment method"
	msgRateUnavailable = "Live rate unavailable, using an estimated rate"
)

// ErrClosed is returned by actions on a wizard that has been torn down.
var ErrClosed = errors.New("wizard closed")

// RateFetcher looks up exchange rates.
type RateFetcher interface {
	GetRate(ctx context.Context, from, to, country string) (rates.ExchangeRate, error)
}

// TransferCreator records new transfers.
type TransferCreator interface {
	Create(ctx context.Context, draft transfer.Draft) (transfer.Transfer, error)
}

// StateSink is the shared application state the wizard reports into.
type StateSink interface {
	AddTransfer(t transfer.Transfer)
	RefreshTransfers(ctx context.Context) error
	RefreshWallets(ctx context.Context) error
}

// Deps wires a wizard to the rest of the application.
type Deps struct {
	Rates     RateFetcher
	Transfers TransferCreator
	State     StateSink
	Notifier  notification.Notifier
	Scheduler schedule.Scheduler
	Logger    *slog.Logger
	// Destination addresses notifications, usually the user's email.
	Destination string
	// OnExit runs when Back is used on the first step.
	OnExit func()
	// OnComplete runs after the transfer has been recorded.
	OnComplete func(transfer.Transfer)
	Now        func() time.Time
}

type recipientInput struct {
	Name    string `validate:"min=2"`
	Account string `validate:"min=4"`
}

type walletNumber struct {
	Number string `validate:"len=10,numeric"`
}

// Wizard holds one send-money session. All methods are safe for concurrent
// use; callbacks from timers and the rate fetch are serialised with actions.
type Wizard struct {
	deps     Deps
	validate *validator.Validate

	mu   sync.Mutex
	step Step

	query   string
	country string
	method  string
	bank    string

	recipientName    string
	recipientAccount string

	amountInput string
	amount      float64

	rate        float64
	rateLoading bool
	rateWarning string
	rateSeq     int
	rateCancel  context.CancelFunc

	route          string
	payment        string
	paymentDetails string

	processingIndex int
	timer           schedule.Timer
	gen             int

	receiptID  string
	message    string
	submitting bool
	completed  bool
	created    *transfer.Transfer
	closed     bool

	wg sync.WaitGroup
}

// New starts a wizard on the country step.
func New(deps Deps) *Wizard {
	if deps.Scheduler == nil {
		deps.Scheduler = schedule.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Wizard{deps: deps, validate: validator.New(), step: StepCountry}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// SearchCountries filters the country list shown on the first step.
func (w *Wizard) SearchCountries(query string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.query = query
	return nil
}

// SelectCountry picks the destination. A different country clears the
// payout method, bank and any rate already fetched.
func (w *Wizard) SelectCountry(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !knownCountry(name) {
		return w.failLocked(fmt.Errorf("%w: unsupported country %q", apperr.ErrValidation, name))
	}
	if name == w.country {
		return nil
	}
	w.country = name
	w.method = ""
	w.bank = ""
	w.invalidateRateLocked()
	w.route = ""
	w.message = ""
	if w.step == StepAmount {
		w.startRateFetchLocked()
	}
	return nil
}

// SelectMethod picks a payout method offered for the current country.
func (w *Wizard) SelectMethod(method string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !validMethod(w.country, method) {
		return w.failLocked(fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectMethod))
	}
	if method != w.method {
		w.bank = ""
	}
	w.method = method
	w.message = ""
	return nil
}

// SelectBank picks the local bank for a Local Bank payout.
func (w *Wizard) SelectBank(bank string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !RequiresBank(w.country, w.method) || !contains(localBanks, bank) {
		return w.failLocked(fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectBank))
	}
	w.bank = bank
	w.message = ""
	return nil
}

// SetRecipient records the recipient. Validation happens on Advance.
func (w *Wizard) SetRecipient(name, account string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.recipientName = strings.TrimSpace(name)
	w.recipientAccount = strings.TrimSpace(account)
	return nil
}

// SetAmount records the USD amount as typed. Input that is not a finite
// number counts as no amount.
func (w *Wizard) SetAmount(input string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.amountInput = strings.TrimSpace(input)
	w.amount = 0
	if v, err := strconv.ParseFloat(w.amountInput, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		w.amount = v
	}
	return nil
}

// SelectRoute picks one of the routes derived from the current rate.
func (w *Wizard) SelectRoute(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.rate <= 0 {
		return w.failLocked(fmt.Errorf("%w: %s", apperr.ErrValidation, msgRatePending))
	}
	if _, ok := findRoute(w.rate, id); !ok {
		return w.failLocked(fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectRoute))
	}
	w.route = id
	w.message = ""
	return nil
}

// SelectPayment picks the funding instrument.
func (w *Wizard) SelectPayment(payment string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !contains(payments, payment) {
		return w.failLocked(fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectPayment))
	}
	w.payment = payment
	w.message = ""
	return nil
}

// ConfirmFunding completes the funding step. Card and bank details are kept
// as entered; USDC needs nothing beyond the deposit.
func (w *Wizard) ConfirmFunding(details string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.step != StepCrypto {
		return w.failLocked(fmt.Errorf("%w: funding can only be confirmed on the %s step", apperr.ErrValidation, StepCrypto))
	}
	w.paymentDetails = strings.TrimSpace(details)
	w.moveLocked(StepProcessing)
	return nil
}

// Advance moves to the next step when the current one is complete. A failed
// guard leaves the step unchanged and records the message.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.guardLocked(w.step); err != nil {
		return w.failLocked(err)
	}
	next, ok := w.step.Next()
	if !ok {
		return w.failLocked(fmt.Errorf("%w: use complete to finish", apperr.ErrValidation))
	}
	w.moveLocked(next)
	return nil
}

// Back returns to the previous step. On the first step it leaves the wizard
// through OnExit.
func (w *Wizard) Back() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	prev, ok := w.step.Prev()
	if ok {
		w.moveLocked(prev)
		w.mu.Unlock()
		return nil
	}
	onExit := w.deps.OnExit
	w.mu.Unlock()
	if onExit != nil {
		onExit()
	}
	return nil
}

// SkipProcessing jumps to the last settlement stage and on to confirm.
func (w *Wizard) SkipProcessing() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.step != StepProcessing {
		return w.failLocked(fmt.Errorf("%w: nothing is processing", apperr.ErrValidation))
	}
	w.processingIndex = len(processingSteps) - 1
	w.moveLocked(StepConfirm)
	return nil
}

// Complete records the transfer from the confirm step. On failure the wizard
// stays on confirm and the error is returned.
func (w *Wizard) Complete(ctx context.Context) (transfer.Transfer, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return transfer.Transfer{}, ErrClosed
	}
	if w.completed && w.created != nil {
		t := *w.created
		w.mu.Unlock()
		return t, nil
	}
	if w.step != StepConfirm {
		err := w.failLocked(fmt.Errorf("%w: transfer can only be completed on the %s step", apperr.ErrValidation, StepConfirm))
		w.mu.Unlock()
		return transfer.Transfer{}, err
	}
	if w.submitting {
		w.mu.Unlock()
		return transfer.Transfer{}, fmt.Errorf("%w: transfer is already being submitted", apperr.ErrConflict)
	}
	if err := w.answersLocked(); err != nil {
		err = w.failLocked(err)
		w.mu.Unlock()
		return transfer.Transfer{}, err
	}
	route, ok := findRoute(w.rate, w.route)
	if !ok {
		err := w.failLocked(fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectRoute))
		w.mu.Unlock()
		return transfer.Transfer{}, err
	}
	draft := transfer.Draft{
		Recipient:        w.recipientName,
		RecipientAccount: w.recipientAccount,
		Amount:           w.amount,
		FromCurrency:     rates.BaseCurrency,
		ToCurrency:       rates.CurrencyFor(w.country),
		Rate:             route.Rate,
		Fee:              route.Fee,
		Country:          w.country,
		Method:           w.methodLabelLocked(),
		Route:            route.ID,
	}
	if w.payment == PaymentUSDC {
		draft.TxHash = simulatedTxHash()
	}
	w.submitting = true
	w.message = ""
	w.mu.Unlock()

	created, err := w.deps.Transfers.Create(ctx, draft)

	w.mu.Lock()
	w.submitting = false
	if err != nil {
		w.message = apperr.Message(err)
		w.mu.Unlock()
		w.deps.Logger.Warn("transfer creation failed", slog.Any("error", err))
		return transfer.Transfer{}, err
	}
	w.completed = true
	w.created = &created
	onComplete := w.deps.OnComplete
	w.mu.Unlock()

	if w.deps.State != nil {
		w.deps.State.AddTransfer(created)
		_ = w.deps.State.RefreshTransfers(ctx)
		_ = w.deps.State.RefreshWallets(ctx)
	}
	if w.deps.Notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindTransferCreated,
			Destination: w.deps.Destination,
			Body:        fmt.Sprintf("Sent %s USD to %s in %s", formatAmount(created.Amount), created.Recipient, created.Country),
		}
		if err := w.deps.Notifier.Send(ctx, msg); err != nil {
			w.deps.Logger.Warn("transfer notification failed", slog.Any("error", err))
		}
	}
	w.deps.Logger.Info("transfer created",
		slog.String("transfer_id", created.ID),
		slog.String("country", created.Country),
		slog.String("route", created.Route),
	)
	if onComplete != nil {
		onComplete(created)
	}
	return created, nil
}

// Close stops timers and drops in-flight rate results. It waits for the rate
// goroutine to return.
func (w *Wizard) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.stopTimerLocked()
	w.invalidateRateLocked()
	w.mu.Unlock()
	w.wg.Wait()
}

// answersLocked re-runs the guard of every step that collects an answer.
func (w *Wizard) answersLocked() error {
	for step := StepCountry; step < StepCrypto; step++ {
		if err := w.guardLocked(step); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wizard) guardLocked(step Step) error {
	switch step {
	case StepCountry:
		if w.country == "" {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectCountry)
		}
	case StepMethod:
		if w.method == "" {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectMethod)
		}
	case StepRecipient:
		return w.checkRecipientLocked()
	case StepAmount:
		if w.rateLoading || w.rate <= 0 {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgRatePending)
		}
		if w.amount <= 0 {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgAmount)
		}
	case StepRoute:
		if w.route == "" {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectRoute)
		}
	case StepPayment:
		if w.payment == "" {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectPayment)
		}
	case StepCrypto, StepProcessing:
	case StepConfirm:
	}
	return nil
}

func (w *Wizard) checkRecipientLocked() error {
	if RequiresBank(w.country, w.method) && w.bank == "" {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, msgSelectBank)
	}
	err := w.validate.Struct(recipientInput{Name: w.recipientName, Account: w.recipientAccount})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if verrs[0].Field() == "Name" {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgRecipientName)
		}
		return fmt.Errorf("%w: %s", apperr.ErrValidation, msgAccountNumber)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if isMobileOperator(w.country, w.method) {
		if err := w.validate.Struct(walletNumber{Number: w.recipientAccount}); err != nil {
			return fmt.Errorf("%w: %s", apperr.ErrValidation, msgWalletNumber)
		}
	}
	return nil
}

// moveLocked switches step, cancelling timers that belong to the old one.
func (w *Wizard) moveLocked(next Step) {
	w.stopTimerLocked()
	w.step = next
	w.message = ""
	switch next {
	case StepAmount:
		w.startRateFetchLocked()
	case StepProcessing:
		w.processingIndex = 0
		w.scheduleLocked(ProcessingTick, w.tick)
	case StepConfirm:
		w.receiptID = fmt.Sprintf("TX-%d", w.deps.Now().UnixMilli())
	}
}

func (w *Wizard) stopTimerLocked() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Wizard) scheduleLocked(d time.Duration, fn func(gen int)) {
	gen := w.gen
	w.timer = w.deps.Scheduler.AfterFunc(d, func() { fn(gen) })
}

func (w *Wizard) tick(gen int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.gen || w.step != StepProcessing {
		return
	}
	last := len(processingSteps) - 1
	if w.processingIndex < last {
		w.processingIndex++
	}
	if w.processingIndex < last {
		w.scheduleLocked(ProcessingTick, w.tick)
		return
	}
	w.scheduleLocked(ProcessingFinal, w.finish)
}

func (w *Wizard) finish(gen int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.gen || w.step != StepProcessing {
		return
	}
	w.moveLocked(StepConfirm)
}

func (w *Wizard) invalidateRateLocked() {
	w.rateSeq++
	if w.rateCancel != nil {
		w.rateCancel()
		w.rateCancel = nil
	}
	w.rate = 0
	w.rateLoading = false
	w.rateWarning = ""
}

func (w *Wizard) startRateFetchLocked() {
	w.invalidateRateLocked()
	if w.deps.Rates == nil {
		w.rate = FallbackRate
		w.rateWarning = msgRateUnavailable
		return
	}
	seq := w.rateSeq
	country := w.country
	currency := rates.CurrencyFor(country)
	ctx, cancel := context.WithCancel(context.Background())
	w.rateCancel = cancel
	w.rateLoading = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()
		rate, err := w.deps.Rates.GetRate(ctx, rates.BaseCurrency, currency, country)

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed || seq != w.rateSeq {
			return
		}
		w.rateLoading = false
		w.rateCancel = nil
		if err != nil || rate.Rate <= 0 {
			w.rate = FallbackRate
			w.rateWarning = msgRateUnavailable
			w.deps.Logger.Warn("rate fetch failed, using fallback",
				slog.String("currency", currency),
				slog.Float64("rate", FallbackRate),
				slog.Any("error", err),
			)
			return
		}
		w.rate = rate.Rate
	}()
}

func (w *Wizard) failLocked(err error) error {
	w.message = apperr.Message(err)
	return err
}

func (w *Wizard) methodLabelLocked() string {
	if w.bank != "" {
		return w.method + " - " + w.bank
	}
	return w.method
}

func knownCountry(name string) bool {
	for _, c := range rates.Countries() {
		if c.Name == name {
			return true
		}
	}
	return false
}

func simulatedTxHash() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return "0x" + hex.EncodeToString(buf)
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
