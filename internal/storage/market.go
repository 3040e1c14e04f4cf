// Package storage provides BadgerHold-based persistence for cached market
// data.
package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

// MarketStore implements interfaces.MarketDataStore on an embedded
// BadgerHold database. Each ticker's bundle is one record keyed by ticker;
// forex pairs live under their pair ticker through the same records.
type MarketStore struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewMarketStore opens (creating if needed) the market cache at path.
func NewMarketStore(logger *common.Logger, path string) (*MarketStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Market store opened")

	return &MarketStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *MarketStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// PutMarketData upserts one ticker's cached record.
func (s *MarketStore) PutMarketData(ctx context.Context, data *models.MarketData) error {
	if data == nil || data.Ticker == "" {
		return fmt.Errorf("market data requires a ticker")
	}
	data.LastUpdated = time.Now().UTC()

	if err := s.db.Upsert(data.Ticker, data); err != nil {
		return fmt.Errorf("failed to save market data for %s: %w", data.Ticker, err)
	}
	s.logger.Debug().Str("ticker", data.Ticker).Msg("Market data saved")
	return nil
}

// GetMarketData returns one ticker's cached record, or nil when absent.
func (s *MarketStore) GetMarketData(ctx context.Context, ticker string) (*models.MarketData, error) {
	var data models.MarketData
	err := s.db.Get(ticker, &data)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market data for %s: %w", ticker, err)
	}
	return &data, nil
}

// GetStocksInfo returns reference info for the tickers, keyed by ticker.
// Tickers without a cached record are absent from the result.
func (s *MarketStore) GetStocksInfo(ctx context.Context, tickers []string) (map[string]*models.StockInfo, error) {
	out := make(map[string]*models.StockInfo, len(tickers))
	for _, ticker := range tickers {
		data, err := s.GetMarketData(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if data != nil && data.Info != nil {
			out[ticker] = data.Info
		}
	}
	return out, nil
}

// GetStocksHistory returns close/adjusted history for the tickers, keyed by
// ticker. Forex pair tickers resolve through the same records.
func (s *MarketStore) GetStocksHistory(ctx context.Context, tickers []string) (map[string]*models.StockHistory, error) {
	out := make(map[string]*models.StockHistory, len(tickers))
	for _, ticker := range tickers {
		data, err := s.GetMarketData(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if data != nil && data.History != nil {
			out[ticker] = data.History
		}
	}
	return out, nil
}

// GetStocksLivePrice returns the latest live quotes, keyed by ticker.
func (s *MarketStore) GetStocksLivePrice(ctx context.Context, tickers []string) (map[string]*models.LivePrice, error) {
	out := make(map[string]*models.LivePrice, len(tickers))
	for _, ticker := range tickers {
		data, err := s.GetMarketData(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if data != nil && data.Live != nil {
			out[ticker] = data.Live
		}
	}
	return out, nil
}

// ListTickers returns every cached ticker, for diagnostics.
func (s *MarketStore) ListTickers(ctx context.Context) ([]string, error) {
	var records []models.MarketData
	if err := s.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list market data: %w", err)
	}
	tickers := make([]string, 0, len(records))
	for i := range records {
		tickers = append(tickers, records[i].Ticker)
	}
	return tickers, nil
}
