package performance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/models"
)

// Service implements interfaces.PerformanceService. It resolves market data
// through the cache store up front, then runs the pure calculation pipeline
// over the resolved in-memory bundle without touching the store again.
type Service struct {
	store  interfaces.MarketDataStore
	logger *common.Logger
	opts   Options
}

// Options configures service-wide calculation policy.
type Options struct {
	StrictRates  bool
	OutlierGuard bool
}

// NewService creates a performance service.
func NewService(store interfaces.MarketDataStore, logger *common.Logger, opts Options) *Service {
	return &Service{
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// ReduceActivities folds a date-sorted activity ledger into daily snapshots.
func (s *Service) ReduceActivities(activities []models.Activity) []models.Snapshot {
	return ReduceActivities(activities)
}

// Compute runs the full pipeline for one request payload: resolve market
// data for every held ticker plus the benchmark and required forex pairs,
// calculate each portfolio independently, then aggregate into the combined
// view with the primary portfolio's full detail attached.
func (s *Service) Compute(ctx context.Context, payload *models.ComputePayload) (*models.PerformanceResult, error) {
	funcStart := time.Now()

	start := models.Day(payload.StartDate)
	end := models.Day(payload.EndDate)

	tickers := heldTickers(payload.Snapshots)
	if payload.Benchmark != "" {
		tickers = append(tickers, payload.Benchmark)
	}

	s.logger.Info().
		Int("portfolios", len(payload.Snapshots)).
		Int("tickers", len(tickers)).
		Str("base_currency", payload.BaseCurrency).
		Str("from", start.Format(models.DateFormat)).
		Str("to", end.Format(models.DateFormat)).
		Msg("Computing portfolio performance")

	market, err := s.resolveMarketData(ctx, tickers, payload.BaseCurrency)
	if err != nil {
		return nil, fmt.Errorf("resolving market data: %w", err)
	}

	opts := CalcOptions{
		BaseCurrency: payload.BaseCurrency,
		Benchmark:    payload.Benchmark,
		StrictRates:  s.opts.StrictRates,
		OutlierGuard: s.opts.OutlierGuard,
	}

	// Stable portfolio order so aggregation is deterministic.
	ids := make([]string, 0, len(payload.Snapshots))
	for id := range payload.Snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]*models.PerformancePortfolio, 0, len(ids))
	byID := make(map[string]*models.PerformancePortfolio, len(ids))
	for _, id := range ids {
		p, err := CalculatePortfolio(id, payload.Snapshots[id], start, end, market, opts)
		if err != nil {
			return nil, fmt.Errorf("portfolio %s: %w", id, err)
		}
		results = append(results, p)
		byID[id] = p
	}

	combined := AggregatePortfolios(results, start, end)
	combined.Portfolio = primaryPortfolio(byID, payload.PortfolioID)

	s.logger.Info().
		Int("days", combined.ValueSeries.Len()).
		Dur("elapsed", time.Since(funcStart)).
		Msg("Performance computation complete")

	return combined, nil
}

// resolveMarketData loads reference info, price histories and live quotes
// for the tickers, derives the forex pairs the valuation needs from the
// asset currencies, loads those pair histories too, and merges each live
// quote into its ticker's history so today values with the latest price.
func (s *Service) resolveMarketData(ctx context.Context, tickers []string, baseCurrency string) (*models.MarketBundle, error) {
	bundle := models.NewMarketBundle()
	if len(tickers) == 0 {
		return bundle, nil
	}

	info, err := s.store.GetStocksInfo(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("stock info: %w", err)
	}
	bundle.Info = info

	histories, err := s.store.GetStocksHistory(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("stock history: %w", err)
	}
	bundle.Histories = histories

	live, err := s.store.GetStocksLivePrice(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("live prices: %w", err)
	}
	bundle.LivePrices = live

	currencies := make([]string, 0, len(info))
	for _, si := range info {
		currencies = append(currencies, si.Currency)
	}
	pairs := RequiredForexPairs(currencies, baseCurrency)
	if len(pairs) > 0 {
		pairHistories, err := s.store.GetStocksHistory(ctx, pairs)
		if err != nil {
			return nil, fmt.Errorf("forex history: %w", err)
		}
		for pair, h := range pairHistories {
			bundle.Histories[pair] = h
		}
		s.logger.Debug().Int("pairs", len(pairs)).Msg("Resolved forex pair histories")
	}

	for ticker, quote := range bundle.LivePrices {
		if h, ok := bundle.Histories[ticker]; ok {
			bundle.Histories[ticker] = MergeLivePriceIntoHistory(quote, h)
		}
	}

	return bundle, nil
}

// MergeLivePriceIntoHistory appends a same-day live quote into a history's
// close and adjusted series. The quote's day replaces any cached value for
// that day via the series merge semantics.
func MergeLivePriceIntoHistory(live *models.LivePrice, history *models.StockHistory) *models.StockHistory {
	if live == nil || live.Close == 0 {
		return history
	}

	day := models.Day(live.Timestamp)
	update := models.NewTimeSeries(models.SeriesPoint{Date: day, Value: live.Close})

	merged := &models.StockHistory{
		Ticker:   history.Ticker,
		Close:    history.Close.MergeWith(update),
		Adjusted: history.Adjusted.MergeWith(update),
		From:     history.From,
		To:       day,
	}
	return merged
}

// heldTickers collects every ticker appearing in any snapshot's share map,
// duplicate-free and sorted.
func heldTickers(snapshots map[string][]models.Snapshot) []string {
	seen := make(map[string]bool)
	for _, list := range snapshots {
		for i := range list {
			for ticker := range list[i].NumShares {
				seen[ticker] = true
			}
		}
	}

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// primaryPortfolio picks the portfolio reported in full detail: the
// requested id when present, otherwise the sole portfolio when only one was
// computed.
func primaryPortfolio(byID map[string]*models.PerformancePortfolio, id string) *models.PerformancePortfolio {
	if id != "" {
		return byID[id]
	}
	if len(byID) == 1 {
		for _, p := range byID {
			return p
		}
	}
	return nil
}
