package wizard

import (
	"time"

	"github.com/shopspring/decimal"
)

// DesignatedCountry gets operator-specific payout methods.
const DesignatedCountry = "Ghana"

const (
	MethodMobileMoney  = "Mobile Money"
	MethodBankTransfer = "Bank Transfer"
	MethodWallet       = "Wallet"

	MethodMTNMoMo      = "MTN MoMo"
	MethodVodafoneCash = "Vodafone Cash"
	MethodAirtelTigo   = "AirtelTigo Money"
	MethodLocalBank    = "Local Bank"
)

const (
	PaymentUSDC = "USDC"
	PaymentCard = "Card"
	PaymentBank = "Bank Account"
)

// DepositAddress receives USDC funding.
const DepositAddress = "0x742d35Cc6634C0532925a3b844Bc2e7c8d7b4c2a"

// FallbackRate is used when the live rate cannot be fetched.
const FallbackRate = 1500.0

const (
	ProcessingTick  = 2 * time.Second
	ProcessingFinal = 1 * time.Second
)

var (
	genericMethods    = []string{MethodMobileMoney, MethodBankTransfer, MethodWallet}
	designatedMethods = []string{MethodMTNMoMo, MethodVodafoneCash, MethodAirtelTigo, MethodLocalBank}
	localBanks        = []string{"GCB Bank", "Ecobank Ghana", "Stanbic Bank", "Fidelity Bank", "Absa Bank Ghana"}
	payments          = []string{PaymentUSDC, PaymentCard, PaymentBank}
	processingSteps   = []ProcessingStep{
		{ID: "convert", Label: "Converting to USDC"},
		{ID: "settle", Label: "On-chain settlement"},
		{ID: "payout", Label: "Local payout"},
		{ID: "confirm", Label: "Recipient confirmed"},
	}
)

// Methods lists the payout methods offered for country.
func Methods(country string) []string {
	if country == DesignatedCountry {
		return clone(designatedMethods)
	}
	return clone(genericMethods)
}

// Banks lists the local banks a Local Bank payout can target.
func Banks() []string {
	return clone(localBanks)
}

// Payments lists funding instruments.
func Payments() []string {
	return clone(payments)
}

// RequiresBank reports whether the method needs a bank sub-selection.
func RequiresBank(country, method string) bool {
	return country == DesignatedCountry && method == MethodLocalBank
}

// isMobileOperator reports whether the account must be a mobile wallet number.
func isMobileOperator(country, method string) bool {
	if country != DesignatedCountry {
		return false
	}
	switch method {
	case MethodMTNMoMo, MethodVodafoneCash, MethodAirtelTigo:
		return true
	}
	return false
}

func validMethod(country, method string) bool {
	for _, m := range Methods(country) {
		if m == method {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Route is a priced settlement path.
type Route struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	Fee      float64 `json:"fee"`
	Estimate string  `json:"estimate"`
}

// optimalDiscount is the rate give-up of the cheapest route.
var optimalDiscount = decimal.RequireFromString("0.999")

// Routes derives the offered routes from the fetched rate.
func Routes(rate float64) []Route {
	raw := decimal.NewFromFloat(rate)
	optimal, _ := raw.Mul(optimalDiscount).Round(4).Float64()
	return []Route{
		{ID: "direct", Name: "Direct Route", Rate: rate, Fee: 0.50, Estimate: "2-3 min"},
		{ID: "optimal", Name: "Optimal (Cheapest)", Rate: optimal, Fee: 0.25, Estimate: "4-5 min"},
		{ID: "fast", Name: "Fast Track", Rate: rate, Fee: 1.50, Estimate: "30-60 sec"},
	}
}

func findRoute(rate float64, id string) (Route, bool) {
	for _, r := range Routes(rate) {
		if r.ID == id {
			return r, true
		}
	}
	return Route{}, false
}

// ProcessingStep is one stage shown while a transfer settles.
type ProcessingStep struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ProcessingSteps lists the settlement stages in order.
func ProcessingSteps() []ProcessingStep {
	out := make([]ProcessingStep, len(processingSteps))
	copy(out, processingSteps)
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
