package models

import (
	"time"
)

// ActivityType discriminates the ledger activity union.
type ActivityType string

const (
	ActivityDeposit       ActivityType = "deposit"
	ActivityTrade         ActivityType = "trade"
	ActivityDividend      ActivityType = "dividend"
	ActivityStockDividend ActivityType = "stock-dividend"
)

// TradeLine is a single leg of a trade activity. Units are signed:
// negative units are a disposal.
type TradeLine struct {
	Ticker string  `json:"ticker"`
	Units  float64 `json:"units"`
}

// Activity is one dated entry in a portfolio's ledger. The ledger store owns
// activities; the engine only reads them, pre-sorted ascending by date with
// ties broken by insertion order.
//
// Field usage by type:
//
//	deposit:        Amount (external cash inflow)
//	trade:          Trades (signed units per leg), Cost (signed; negative = sale proceeds)
//	dividend:       Ticker, Amount (cash dividend)
//	stock-dividend: Ticker, Units (shares issued in lieu of cash)
type Activity struct {
	ID     string       `json:"id"`
	Type   ActivityType `json:"type"`
	Date   time.Time    `json:"date"`
	Amount float64      `json:"amount,omitempty"`
	Ticker string       `json:"ticker,omitempty"`
	Units  float64      `json:"units,omitempty"`
	Cost   float64      `json:"cost,omitempty"`
	Trades []TradeLine  `json:"trades,omitempty"`
}

// Snapshot is the reduced portfolio state as of a date: it is valid from its
// date up to, but not including, the next snapshot's date. Snapshots are
// produced once by the ledger reducer and immutable thereafter.
type Snapshot struct {
	Date      time.Time          `json:"date"`
	Cash      float64            `json:"cash"`
	CashFlow  float64            `json:"cash_flow"` // cumulative external deposits to date
	Dividend  float64            `json:"dividend"`  // cash dividend received on this exact day
	NumShares map[string]float64 `json:"num_shares"`
}

// CopyShares returns an independent copy of the snapshot's share map.
// The reducer uses this for explicit copy-on-write so no two snapshots
// alias the same map.
func (s *Snapshot) CopyShares() map[string]float64 {
	shares := make(map[string]float64, len(s.NumShares))
	for ticker, units := range s.NumShares {
		shares[ticker] = units
	}
	return shares
}

// Tickers returns the tickers currently held, in unspecified order.
func (s *Snapshot) Tickers() []string {
	tickers := make([]string, 0, len(s.NumShares))
	for t := range s.NumShares {
		tickers = append(tickers, t)
	}
	return tickers
}
