package wizard

import "fmt"

// Step is one screen of the send-money flow. The order is fixed.
type Step int

const (
	StepCountry Step = iota
	StepMethod
	StepRecipient
	StepAmount
	StepRoute
	StepPayment
	StepCrypto
	StepProcessing
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepCountry:
		return "country"
	case StepMethod:
		return "method"
	case StepRecipient:
		return "recipient"
	case StepAmount:
		return "amount"
	case StepRoute:
		return "route"
	case StepPayment:
		return "payment"
	case StepCrypto:
		return "crypto"
	case StepProcessing:
		return "processing"
	case StepConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// MarshalText renders the step by name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Next returns the following step. ok is false at the terminal step.
func (s Step) Next() (Step, bool) {
	if s >= StepConfirm {
		return s, false
	}
	return s + 1, true
}

// Prev returns the preceding step. ok is false at the first step.
func (s Step) Prev() (Step, bool) {
	if s <= StepCountry {
		return s, false
	}
	return s - 1, true
}

// UnmarshalText parses a step name.
func (s *Step) UnmarshalText(text []byte) error {
	for candidate := StepCountry; candidate <= StepConfirm; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown wizard step %q", text)
}
