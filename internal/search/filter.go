package search

import (
	"strings"

	"github.com/quantumauth-io/crypto-tracker/internal/market"
)

// Filter keeps the coins whose name or symbol contains query, ignoring case.
// Source order is preserved. A blank or whitespace-only query returns coins
// unchanged; otherwise the query is matched as typed, spaces included.
func Filter(query string, coins []market.CoinRecord) []market.CoinRecord {
	if strings.TrimSpace(query) == "" {
		return coins
	}
	q := strings.ToLower(query)

	out := make([]market.CoinRecord, 0, len(coins))
	for _, c := range coins {
		if Matches(q, c) {
			out = append(out, c)
		}
	}
	return out
}

// Matches expects q already lower-cased.
func Matches(q string, c market.CoinRecord) bool {
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Symbol), q)
}
