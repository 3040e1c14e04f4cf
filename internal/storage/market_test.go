package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

func newTestStore(t *testing.T) *MarketStore {
	t.Helper()
	store, err := NewMarketStore(common.NewLogger("error"), filepath.Join(t.TempDir(), "market"))
	if err != nil {
		t.Fatalf("NewMarketStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleMarketData(ticker, currency string) *models.MarketData {
	series := models.NewTimeSeries(
		models.SeriesPoint{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 10},
		models.SeriesPoint{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 11},
	)
	return &models.MarketData{
		Ticker: ticker,
		Info:   &models.StockInfo{Ticker: ticker, Currency: currency},
		History: &models.StockHistory{
			Ticker:   ticker,
			Close:    series,
			Adjusted: series,
		},
		Live: &models.LivePrice{Ticker: ticker, Close: 11.5, Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestMarketStore_PutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutMarketData(ctx, sampleMarketData("ABC", "USD")); err != nil {
		t.Fatalf("PutMarketData failed: %v", err)
	}

	data, err := store.GetMarketData(ctx, "ABC")
	if err != nil {
		t.Fatalf("GetMarketData failed: %v", err)
	}
	if data == nil {
		t.Fatal("expected cached record")
	}
	if data.Info.Currency != "USD" {
		t.Errorf("currency = %q, want USD", data.Info.Currency)
	}
	if got := data.History.Close.Get(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)); got != 11 {
		t.Errorf("close = %v, want 11", got)
	}
	if data.LastUpdated.IsZero() {
		t.Error("expected LastUpdated to be stamped")
	}
}

func TestMarketStore_GetUnknownTicker(t *testing.T) {
	store := newTestStore(t)

	data, err := store.GetMarketData(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("GetMarketData failed: %v", err)
	}
	if data != nil {
		t.Fatal("expected nil for unknown ticker")
	}
}

func TestMarketStore_PutRequiresTicker(t *testing.T) {
	store := newTestStore(t)

	if err := store.PutMarketData(context.Background(), &models.MarketData{}); err == nil {
		t.Fatal("expected error for empty ticker")
	}
}

func TestMarketStore_BatchLookupsSkipUnknown(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutMarketData(ctx, sampleMarketData("ABC", "USD")); err != nil {
		t.Fatalf("PutMarketData failed: %v", err)
	}
	if err := store.PutMarketData(ctx, sampleMarketData("USDGBP", "")); err != nil {
		t.Fatalf("PutMarketData failed: %v", err)
	}

	info, err := store.GetStocksInfo(ctx, []string{"ABC", "MISSING"})
	if err != nil {
		t.Fatalf("GetStocksInfo failed: %v", err)
	}
	if len(info) != 1 || info["ABC"] == nil {
		t.Fatalf("info = %v, want ABC only", info)
	}

	histories, err := store.GetStocksHistory(ctx, []string{"ABC", "USDGBP", "MISSING"})
	if err != nil {
		t.Fatalf("GetStocksHistory failed: %v", err)
	}
	if len(histories) != 2 {
		t.Fatalf("histories = %d entries, want 2", len(histories))
	}

	live, err := store.GetStocksLivePrice(ctx, []string{"ABC"})
	if err != nil {
		t.Fatalf("GetStocksLivePrice failed: %v", err)
	}
	if live["ABC"] == nil || live["ABC"].Close != 11.5 {
		t.Fatalf("live = %v, want ABC at 11.5", live)
	}
}

func TestMarketStore_UpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutMarketData(ctx, sampleMarketData("ABC", "USD")); err != nil {
		t.Fatalf("PutMarketData failed: %v", err)
	}

	updated := sampleMarketData("ABC", "GBP")
	if err := store.PutMarketData(ctx, updated); err != nil {
		t.Fatalf("PutMarketData failed: %v", err)
	}

	data, err := store.GetMarketData(ctx, "ABC")
	if err != nil {
		t.Fatalf("GetMarketData failed: %v", err)
	}
	if data.Info.Currency != "GBP" {
		t.Errorf("currency = %q, want GBP after upsert", data.Info.Currency)
	}
}

func TestMarketStore_ListTickers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, ticker := range []string{"ABC", "DEF", "USDGBP"} {
		if err := store.PutMarketData(ctx, sampleMarketData(ticker, "USD")); err != nil {
			t.Fatalf("PutMarketData failed: %v", err)
		}
	}

	tickers, err := store.ListTickers(ctx)
	if err != nil {
		t.Fatalf("ListTickers failed: %v", err)
	}
	if len(tickers) != 3 {
		t.Fatalf("tickers = %v, want 3 entries", tickers)
	}
}
