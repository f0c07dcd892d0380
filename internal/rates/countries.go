package rates

import "strings"

// BaseCurrency is what senders pay in.
const BaseCurrency = "USD"

// Country is a supported payout destination.
type Country struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

var countries = []Country{
	{Name: "Nigeria", Currency: "NGN"},
	{Name: "Kenya", Currency: "KES"},
	{Name: "Ghana", Currency: "GHS"},
	{Name: "Mexico", Currency: "MXN"},
	{Name: "India", Currency: "INR"},
	{Name: "Brazil", Currency: "BRL"},
}

// Countries lists supported destinations in display order.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// CurrencyFor maps a country name to its local currency, USD when unknown.
func CurrencyFor(country string) string {
	for _, c := range countries {
		if c.Name == country {
			return c.Currency
		}
	}
	return BaseCurrency
}

// SearchCountries returns the countries whose name contains query, ignoring
// case. An empty query matches everything.
func SearchCountries(query string) []Country {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Country, 0, len(countries))
	for _, c := range countries {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}
