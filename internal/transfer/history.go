package transfer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FilterAll disables status filtering in Filter.
const FilterAll = "all"

const recentCountryLimit = 5

// Filter narrows transfers to one status (or FilterAll) and to recipients
// whose name contains search, ignoring case. Order is preserved.
func Filter(transfers []Transfer, status string, search string) []Transfer {
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]Transfer, 0, len(transfers))
	for _, t := range transfers {
		if status != "" && status != FilterAll && string(t.Status) != status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Recipient), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summary aggregates a transfer list for the dashboard and history views.
type Summary struct {
	TotalSent       float64  `json:"totalSent"`
	TotalAmount     float64  `json:"totalAmount"`
	Count           int      `json:"count"`
	Countries       int      `json:"countries"`
	RecentCountries []string `json:"recentCountries"`
	SuccessRate     int      `json:"successRate"`
}

// Summarize computes totals over transfers, which are expected newest first.
// TotalSent only counts completed transfers; SuccessRate is a whole percentage
// and reads 100 for an empty history.
func Summarize(transfers []Transfer) Summary {
	sent := decimal.Zero
	all := decimal.Zero
	completed := 0
	seen := make(map[string]struct{})
	recent := make([]string, 0, recentCountryLimit)

	for _, t := range transfers {
		amount := decimal.NewFromFloat(t.Amount)
		all = all.Add(amount)
		if t.Status == StatusCompleted {
			completed++
			sent = sent.Add(amount)
		}
		if t.Country == "" {
			continue
		}
		if _, ok := seen[t.Country]; ok {
			continue
		}
		seen[t.Country] = struct{}{}
		if len(recent) < recentCountryLimit {
			recent = append(recent, t.Country)
		}
	}

	rate := 100
	if len(transfers) > 0 {
		rate = int(decimal.NewFromInt(int64(completed)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(len(transfers)))).
			Round(0).IntPart())
	}

	return Summary{
		TotalSent:       sent.Round(2).InexactFloat64(),
		TotalAmount:     all.Round(2).InexactFloat64(),
		Count:           len(transfers),
		Countries:       len(seen),
		RecentCountries: recent,
		SuccessRate:     rate,
	}
}

// Recent returns at most n transfers from the head of the list.
func Recent(transfers []Transfer, n int) []Transfer {
	if n < 0 {
		n = 0
	}
	if len(transfers) < n {
		n = len(transfers)
	}
	out := make([]Transfer, n)
	copy(out, transfers[:n])
	return out
}
