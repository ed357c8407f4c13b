package utils

import (
	"strings"
)

// Common ticker aliases for names people type instead of symbols.
var tickerAliases = map[string]string{
	"APPLE":     "AAPL",
	"MICROSOFT": "MSFT",
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"AMAZON":    "AMZN",
	"FACEBOOK":  "META",
	"FB":        "META",
	"NVIDIA":    "NVDA",
	"TESLA":     "TSLA",
	"NETFLIX":   "NFLX",
	"BERKSHIRE": "BRK-B",
	"JPMORGAN":  "JPM",
	"VISA":      "V",
	"WALMART":   "WMT",
	"EXXON":     "XOM",
}

// Index tickers in Yahoo Finance notation.
var indexTickers = map[string]string{
	"SPX":        "^GSPC",
	"S&P500":     "^GSPC",
	"S&P 500":    "^GSPC",
	"SP500":      "^GSPC",
	"DOW":        "^DJI",
	"DJIA":       "^DJI",
	"NASDAQ":     "^IXIC",
	"NDX":        "^NDX",
	"RUSSELL":    "^RUT",
	"RUSSELL2000": "^RUT",
	"VIX":        "^VIX",
}

// NormalizeTicker normalizes a user-input ticker to canonical upper case.
// It handles aliases, index names, a leading $, and whitespace.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")

	if idx, ok := indexTickers[ticker]; ok {
		return idx
	}
	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ToYahooTicker converts a ticker to Yahoo Finance notation. Share-class
// suffixes written with a dot or slash (BRK.B, BF/B) use a dash on Yahoo.
// Exchange suffixes such as .L or .TO are kept.
func ToYahooTicker(ticker string) string {
	ticker = NormalizeTicker(ticker)
	if strings.HasPrefix(ticker, "^") {
		return ticker
	}
	ticker = strings.ReplaceAll(ticker, "/", "-")
	if i := strings.LastIndexByte(ticker, '.'); i > 0 && len(ticker)-i == 2 {
		// single-letter class suffix, not an exchange code
		if c := ticker[i+1]; c == 'A' || c == 'B' || c == 'C' {
			ticker = ticker[:i] + "-" + ticker[i+1:]
		}
	}
	return ticker
}

// IsIndex reports whether the ticker resolves to a market index.
func IsIndex(ticker string) bool {
	return strings.HasPrefix(NormalizeTicker(ticker), "^")
}

// SplitTickers splits a comma or space separated list and normalizes each
// entry, dropping blanks and duplicates.
func SplitTickers(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		t := ToYahooTicker(f)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
