package models

import (
	"time"
)

// StockInfo holds read-only reference data for a listed instrument.
type StockInfo struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency"` // quote currency as reported by the data source (may be a minor-unit code like GBX)
	Exchange string `json:"exchange,omitempty"`
}

// StockHistory holds the historical price series for a ticker. Close is the
// raw daily close, Adjusted the dividend/split-adjusted close. From/To record
// the covered date range of the fetched data.
type StockHistory struct {
	Ticker   string      `json:"ticker"`
	Close    *TimeSeries `json:"close"`
	Adjusted *TimeSeries `json:"adjusted"`
	From     time.Time   `json:"from,omitempty"`
	To       time.Time   `json:"to,omitempty"`
}

// LivePrice is the latest intraday quote for a ticker.
type LivePrice struct {
	Ticker        string    `json:"ticker"`
	Close         float64   `json:"close"`
	PreviousClose float64   `json:"previous_close,omitempty"`
	ChangePct     float64   `json:"change_pct,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// MarketData bundles everything cached for one ticker. Forex pairs are
// stored under their pair ticker (e.g. "USDGBP") through the same structure
// used for equities.
type MarketData struct {
	Ticker      string        `json:"ticker"`
	Info        *StockInfo    `json:"info,omitempty"`
	History     *StockHistory `json:"history,omitempty"`
	Live        *LivePrice    `json:"live,omitempty"`
	LastUpdated time.Time     `json:"last_updated"`
}

// MarketBundle is the fully resolved market data for one computation:
// a synchronous in-memory view the calculator reads without further I/O.
// All maps are keyed by ticker; forex rate series appear in Histories under
// their pair ticker.
type MarketBundle struct {
	Info       map[string]*StockInfo
	Histories  map[string]*StockHistory
	LivePrices map[string]*LivePrice
}

// NewMarketBundle returns an empty bundle with all maps initialized.
func NewMarketBundle() *MarketBundle {
	return &MarketBundle{
		Info:       make(map[string]*StockInfo),
		Histories:  make(map[string]*StockHistory),
		LivePrices: make(map[string]*LivePrice),
	}
}

// CloseAt returns the close price of ticker as of date (forward-filled),
// or 0 when no history is known.
func (b *MarketBundle) CloseAt(ticker string, date time.Time) float64 {
	h, ok := b.Histories[ticker]
	if !ok || h.Close == nil {
		return 0
	}
	return h.Close.Get(date)
}

// AdjustedAt returns the adjusted close of ticker as of date, or 0 when
// no history is known.
func (b *MarketBundle) AdjustedAt(ticker string, date time.Time) float64 {
	h, ok := b.Histories[ticker]
	if !ok || h.Adjusted == nil {
		return 0
	}
	return h.Adjusted.Get(date)
}
