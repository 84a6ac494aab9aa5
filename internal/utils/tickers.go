// Package utils holds small helpers shared by the HTTP and service layers.
package utils

import "strings"

// NormalizeTicker trims and upper-cases a ticker symbol
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseTickers splits a comma-separated list into normalized tickers,
// dropping blanks and repeats while keeping first-seen order.
// Returns nil for empty/whitespace-only input.
func ParseTickers(s string) []string {
	var result []string
	seen := make(map[string]bool)
	for _, v := range strings.Split(s, ",") {
		ticker := NormalizeTicker(v)
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		result = append(result, ticker)
	}
	return result
}
