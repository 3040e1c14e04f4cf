// Package performance implements the portfolio performance computation
// engine: ledger reduction, day-by-day valuation, TWRR chaining, and
// multi-portfolio aggregation.
package performance

import (
	"fmt"
	"sort"
)

// minorUnit describes a non-standard currency quote: prices are reported in
// a minor unit (e.g. pence) and must be rescaled to the standard code.
type minorUnit struct {
	currency string
	divisor  float64
}

// minorUnits maps known minor-unit or alias currency codes to their standard
// code and scale. Unknown codes pass through untouched.
var minorUnits = map[string]minorUnit{
	"GBX": {currency: "GBP", divisor: 100}, // London quotes in pence
	"GBp": {currency: "GBP", divisor: 100},
	"ZAc": {currency: "ZAR", divisor: 100}, // Johannesburg cents
	"ILA": {currency: "ILS", divisor: 100}, // Tel Aviv agorot
}

// NormalizeCurrency maps a minor-unit or alias currency code to its standard
// code and rescales the value accordingly. Unknown codes return unchanged.
func NormalizeCurrency(currency string, value float64) (string, float64) {
	if mu, ok := minorUnits[currency]; ok {
		return mu.currency, value / mu.divisor
	}
	return currency, value
}

// ForexPairTicker returns the deterministic pair identifier used to look up
// an exchange rate series, e.g. ForexPairTicker("USD", "GBP") == "USDGBP".
func ForexPairTicker(currency, baseCurrency string) string {
	return currency + baseCurrency
}

// RateLookup resolves an exchange rate for a forex pair ticker. A false
// second return means no rate is known for the pair.
type RateLookup func(pairTicker string) (float64, bool)

// ErrMissingRate is returned in strict mode when a required forex rate
// cannot be resolved.
var ErrMissingRate = fmt.Errorf("missing forex rate")

// Exchange converts value from currency into baseCurrency using rates. The
// currency is normalized first; when the normalized currency already equals
// the base the normalized value is returned unchanged. A missing rate
// silently defaults to 1, matching how upstream data gaps are tolerated.
// Strict callers use ExchangeStrict.
func Exchange(value float64, currency, baseCurrency string, rates RateLookup) float64 {
	converted, _ := exchange(value, currency, baseCurrency, rates, false)
	return converted
}

// ExchangeStrict is Exchange with the silent rate-default disabled: a
// missing rate returns ErrMissingRate instead of assuming parity.
func ExchangeStrict(value float64, currency, baseCurrency string, rates RateLookup) (float64, error) {
	return exchange(value, currency, baseCurrency, rates, true)
}

func exchange(value float64, currency, baseCurrency string, rates RateLookup, strict bool) (float64, error) {
	currency, value = NormalizeCurrency(currency, value)
	if currency == baseCurrency || currency == "" {
		return value, nil
	}

	rate, ok := rates(ForexPairTicker(currency, baseCurrency))
	if !ok {
		if strict {
			return 0, fmt.Errorf("%w: %s", ErrMissingRate, ForexPairTicker(currency, baseCurrency))
		}
		rate = 1
	}
	return value * rate, nil
}

// RequiredForexPairs computes the pair tickers a computation needs given the
// known asset currencies and the base currency. Minor-unit codes normalize
// before pairing so GBX assets need no GBX pair when the base is GBP.
// The result is sorted and duplicate-free.
func RequiredForexPairs(assetCurrencies []string, baseCurrency string) []string {
	seen := make(map[string]bool)
	for _, cur := range assetCurrencies {
		normalized, _ := NormalizeCurrency(cur, 0)
		if normalized == "" || normalized == baseCurrency {
			continue
		}
		seen[ForexPairTicker(normalized, baseCurrency)] = true
	}

	pairs := make([]string, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)
	return pairs
}
