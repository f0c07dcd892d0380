package latency

import (
	"context"
	"time"
)

// Op names a Domain API operation with a fixed simulated round trip.
type Op string

const (
	OpLogin          Op = "auth.login"
	OpSignup         Op = "auth.signup"
	OpLogout         Op = "auth.logout"
	OpCurrentUser    Op = "auth.current_user"
	OpUpdateKYC      Op = "auth.update_kyc"
	OpListWallets    Op = "wallet.list"
	OpUpdateWallet   Op = "wallet.update"
	OpListTransfers  Op = "transfer.list"
	OpCreateTransfer Op = "transfer.create"
	OpUpdateStatus   Op = "transfer.update_status"
	OpGetRate        Op = "rates.get"
)

var baseDelays = map[Op]time.Duration{
	OpLogin:          time.Second,
	OpSignup:         time.Second,
	OpLogout:         300 * time.Millisecond,
	OpCurrentUser:    200 * time.Millisecond,
	OpUpdateKYC:      500 * time.Millisecond,
	OpListWallets:    300 * time.Millisecond,
	OpUpdateWallet:   300 * time.Millisecond,
	OpListTransfers:  200 * time.Millisecond,
	OpCreateTransfer: 500 * time.Millisecond,
	OpUpdateStatus:   300 * time.Millisecond,
	OpGetRate:        400 * time.Millisecond,
}

// Simulator stands in for network latency in front of the mock storage.
type Simulator struct {
	scale float64
}

// New returns a simulator whose delays are multiplied by scale. A scale of
// zero or less disables waiting.
func New(scale float64) Simulator {
	return Simulator{scale: scale}
}

// None returns a simulator that never waits. Useful for tests.
func None() Simulator {
	return Simulator{}
}

// Delay reports the scaled delay configured for op.
func (s Simulator) Delay(op Op) time.Duration {
	if s.scale <= 0 {
		return 0
	}
	return time.Duration(float64(baseDelays[op]) * s.scale)
}

// Wait blocks for the delay of op or until ctx is done.
func (s Simulator) Wait(ctx context.Context, op Op) error {
	d := s.Delay(op)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
