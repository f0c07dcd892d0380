package wallet

// Wallet is a stablecoin or token balance shown on the dashboard. Value is the
// balance in display currency; the mock keeps it equal to Amount once updated.
type Wallet struct {
	ID      string  `json:"id"`
	Symbol  string  `json:"symbol"`
	Amount  float64 `json:"amount"`
	Value   float64 `json:"value"`
	Network string  `json:"network"`
	Address string  `json:"address,omitempty"`
}

// DefaultWallets is the seed set created on first access.
func DefaultWallets() []Wallet {
	return []Wallet{
		{ID: "wallet-1", Symbol: "USDC", Amount: 2450.5, Value: 2450.5, Network: "Polygon"},
		{ID: "wallet-2", Symbol: "ETH", Amount: 0.85, Value: 2840.0, Network: "Ethereum"},
		{ID: "wallet-3", Symbol: "USDT", Amount: 1000, Value: 1000.0, Network: "Polygon"},
	}
}
