package models

import (
	"time"
)

// HoldingDetail is one position in the final holdings breakdown, valued in
// the computation's base currency at the end date.
type HoldingDetail struct {
	Ticker    string     `json:"ticker"`
	Units     float64    `json:"units"`
	Value     float64    `json:"value"`
	Info      *StockInfo `json:"info,omitempty"`
	LivePrice *LivePrice `json:"live_price,omitempty"`
}

// PerformancePortfolio is the full computed result for a single portfolio:
// five daily series, monthly dividend totals, and the end-of-range holdings
// breakdown. Constructed fresh per computation and never mutated after being
// handed back.
type PerformancePortfolio struct {
	ID                 string                   `json:"id"`
	ValueSeries        *TimeSeries              `json:"value_series"`
	GainSeries         *TimeSeries              `json:"gain_series"`
	TwrrSeries         *TimeSeries              `json:"twrr_series"`
	CashFlowSeries     *TimeSeries              `json:"cash_flow_series"`
	BenchmarkSeries    *TimeSeries              `json:"benchmark_series,omitempty"`
	MonthlyDividends   *TimeSeries              `json:"monthly_dividends"`
	LastSnapshot       *Snapshot                `json:"last_snapshot,omitempty"`
	TotalHoldingsValue float64                  `json:"total_holdings_value"`
	Holdings           map[string]HoldingDetail `json:"holdings"`
}

// NewPerformancePortfolio returns an empty result with all series allocated,
// so an empty-ledger computation still reports empty series rather than nils.
func NewPerformancePortfolio(id string) *PerformancePortfolio {
	return &PerformancePortfolio{
		ID:               id,
		ValueSeries:      NewTimeSeries(),
		GainSeries:       NewTimeSeries(),
		TwrrSeries:       NewTimeSeries(),
		CashFlowSeries:   NewTimeSeries(),
		MonthlyDividends: NewTimeSeries(),
		Holdings:         make(map[string]HoldingDetail),
	}
}

// PerformanceResult is the aggregated response payload: combined series
// across all requested portfolios plus the primary portfolio's full detail.
type PerformanceResult struct {
	ValueSeries      *TimeSeries           `json:"value_series"`
	GainSeries       *TimeSeries           `json:"gain_series"`
	CashFlowSeries   *TimeSeries           `json:"cash_flow_series"`
	MonthlyDividends *TimeSeries           `json:"monthly_dividends"`
	Portfolio        *PerformancePortfolio `json:"portfolio,omitempty"`
}

// ComputeRequestType is the discriminator for performance computation
// requests at the worker boundary.
const ComputeRequestType = "process-portfolio"

// ComputePayload carries the inputs for one performance computation.
// Snapshots are pre-sorted ascending by date per portfolio.
type ComputePayload struct {
	Snapshots    map[string][]Snapshot `json:"snapshots"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      time.Time             `json:"end_date"`
	BaseCurrency string                `json:"base_currency"`
	PortfolioID  string                `json:"portfolio_id,omitempty"` // which portfolio is primary in the response
	Benchmark    string                `json:"benchmark,omitempty"`    // ticker to compare against
}

// ComputeRequest is the one-shot request message accepted by the worker.
type ComputeRequest struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload *ComputePayload `json:"payload"`
}

// ComputeResponse is the one-shot response message. Payload is nil when the
// request failed validation or the computation panicked; errors never cross
// the worker boundary as panics.
type ComputeResponse struct {
	ID      string             `json:"id,omitempty"`
	Type    string             `json:"type"`
	Payload *PerformanceResult `json:"payload"`
}

// ComputeEvent is broadcast to subscribed clients when a computation
// finishes. It carries metadata only, never the result itself, so the
// request/response contract stays one-shot.
type ComputeEvent struct {
	RequestID  string    `json:"request_id"`
	Portfolio  string    `json:"portfolio,omitempty"`
	Succeeded  bool      `json:"succeeded"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
