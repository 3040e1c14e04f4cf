// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/folioworks/folio/internal/models"
)

// PerformanceService computes portfolio performance series from reduced
// ledger snapshots and resolved market data.
type PerformanceService interface {
	// Compute runs the full pipeline for a request payload: per-portfolio
	// calculation plus cross-portfolio aggregation. It resolves market data
	// through the store before calculating.
	Compute(ctx context.Context, payload *models.ComputePayload) (*models.PerformanceResult, error)

	// ReduceActivities folds a date-sorted activity ledger into daily
	// snapshots, one per distinct activity day.
	ReduceActivities(activities []models.Activity) []models.Snapshot

	// RenderChart renders the computed value and gain series as a PNG chart.
	RenderChart(result *models.PerformanceResult) ([]byte, error)
}

// MarketDataStore is the cached market data collaborator. Implementations
// serialize their own read/write transactions per ticker; the engine only
// sees fully resolved in-memory data.
type MarketDataStore interface {
	// GetStocksInfo returns reference info for the given tickers, keyed by
	// ticker. Unknown tickers are absent from the result, not an error.
	GetStocksInfo(ctx context.Context, tickers []string) (map[string]*models.StockInfo, error)

	// GetStocksHistory returns close/adjusted history for the given tickers,
	// keyed by ticker. Forex pair tickers resolve through the same call.
	GetStocksHistory(ctx context.Context, tickers []string) (map[string]*models.StockHistory, error)

	// GetStocksLivePrice returns the latest live quotes, keyed by ticker.
	GetStocksLivePrice(ctx context.Context, tickers []string) (map[string]*models.LivePrice, error)

	// PutMarketData upserts the cached record for one ticker.
	PutMarketData(ctx context.Context, data *models.MarketData) error

	// Close releases the underlying store.
	Close() error
}
