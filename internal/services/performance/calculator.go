package performance

import (
	"fmt"
	"time"

	"github.com/folioworks/folio/internal/models"
)

// CalcOptions configures a single-portfolio calculation.
type CalcOptions struct {
	BaseCurrency string
	Benchmark    string // ticker to compare against; empty disables the benchmark series
	StrictRates  bool   // surface ErrMissingRate instead of defaulting missing rates to 1
	OutlierGuard bool   // cap implausible day-over-day value swings from corrupted EOD data
}

// CalculatePortfolio runs the day-by-day state machine for one portfolio
// over [start, end] inclusive, producing the five output series, the monthly
// dividend totals, and the end-of-range holdings breakdown. Snapshots must
// be sorted ascending by date. The function is pure: identical inputs give
// identical outputs and no I/O is performed.
func CalculatePortfolio(id string, snapshots []models.Snapshot, start, end time.Time, market *models.MarketBundle, opts CalcOptions) (*models.PerformancePortfolio, error) {
	result := models.NewPerformancePortfolio(id)
	if len(snapshots) == 0 {
		return result, nil
	}

	start = models.Day(start)
	end = models.Day(end)

	var (
		benchmarkInitial  float64
		benchmarkObserved bool
		benchmarkSeries   *models.TimeSeries
		rateErr           error
	)
	if opts.Benchmark != "" {
		benchmarkSeries = models.NewTimeSeries()
	}

	ForEachDay(snapshots, start, end, func(day time.Time, snapshot, previous *models.Snapshot) {
		if rateErr != nil {
			return
		}

		rates := dayRateLookup(market, day)

		// Holdings value: each held ticker at its close on this day,
		// converted into the base currency.
		holdingsValue := 0.0
		for ticker, units := range snapshot.NumShares {
			value := units * market.CloseAt(ticker, day)
			currency := tickerCurrency(market, ticker)
			if opts.StrictRates {
				converted, err := ExchangeStrict(value, currency, opts.BaseCurrency, rates)
				if err != nil {
					rateErr = fmt.Errorf("valuing %s on %s: %w", ticker, day.Format(models.DateFormat), err)
					return
				}
				holdingsValue += converted
			} else {
				holdingsValue += Exchange(value, currency, opts.BaseCurrency, rates)
			}
		}

		value := holdingsValue + snapshot.Cash

		if opts.OutlierGuard {
			// Corrupted EOD data can produce implausible single-day swings;
			// hold the previous value when today moves more than 50% either way.
			if prev := result.ValueSeries.Last(); result.ValueSeries.Len() > 0 && prev > 0 && value > 0 {
				if ratio := value / prev; ratio > 1.5 || ratio < 0.5 {
					value = prev
				}
			}
		}

		// Cumulative TWRR: seeded at 0 on the first included day, then
		// chain-linked day by day. Seeding excludes the first day's ratio,
		// whose denominator has no prior value to measure from; it also
		// makes chains over adjoining ranges compose.
		chained := 0.0
		if !result.TwrrSeries.IsEmpty() {
			// The inflow counts only when it happened today, i.e. the
			// snapshot in effect is dated today rather than carried forward.
			cashFlowToday := 0.0
			if snapshot.Date.Equal(day) {
				prevCashFlow := 0.0
				if previous != nil {
					prevCashFlow = previous.CashFlow
				}
				cashFlowToday = snapshot.CashFlow - prevCashFlow
			}

			startValue := result.ValueSeries.Get(day.AddDate(0, 0, -1))

			// Degenerate when yesterday's value and today's inflow are both
			// zero; the formula then yields NaN/Inf, which propagate.
			dailyTwrr := (value - startValue - cashFlowToday) / (startValue + cashFlowToday)

			chained = (1+result.TwrrSeries.Last())*(1+dailyTwrr) - 1
		}

		result.ValueSeries.Append(day, value)
		result.GainSeries.Append(day, value-snapshot.CashFlow)
		result.TwrrSeries.Append(day, chained)
		result.CashFlowSeries.Append(day, snapshot.CashFlow)

		if benchmarkSeries != nil {
			benchmarkSeries.Append(day, benchmarkReturn(market, opts.Benchmark, day, &benchmarkInitial, &benchmarkObserved))
		}
	})

	if rateErr != nil {
		return nil, rateErr
	}

	rebaseGainSeries(result.GainSeries)
	result.BenchmarkSeries = benchmarkSeries
	result.MonthlyDividends = monthlyDividends(snapshots, start, end)

	last := snapshots[len(snapshots)-1]
	result.LastSnapshot = &last
	if err := finalHoldings(result, &last, end, market, opts); err != nil {
		return nil, err
	}

	return result, nil
}

// dayRateLookup resolves forex rates from the bundle's pair histories at the
// given day's close.
func dayRateLookup(market *models.MarketBundle, day time.Time) RateLookup {
	return func(pairTicker string) (float64, bool) {
		h, ok := market.Histories[pairTicker]
		if !ok || h.Close.IsEmpty() {
			return 0, false
		}
		return h.Close.Get(day), true
	}
}

// tickerCurrency returns the quote currency from the bundle's reference
// info, or empty when the ticker is unknown (treated as already in base).
func tickerCurrency(market *models.MarketBundle, ticker string) string {
	if info, ok := market.Info[ticker]; ok {
		return info.Currency
	}
	return ""
}

// benchmarkReturn reports the benchmark's return since the first adjusted
// close observed at/after the range start, or 0 while no value is available.
// The forward-fill clamp must not fabricate observations before the series
// begins, hence the explicit first-point check.
func benchmarkReturn(market *models.MarketBundle, ticker string, day time.Time, initial *float64, observed *bool) float64 {
	h, ok := market.Histories[ticker]
	if !ok || h.Adjusted.IsEmpty() {
		return 0
	}
	first, _ := h.Adjusted.First()
	if day.Before(first.Date) {
		return 0
	}

	current := h.Adjusted.Get(day)
	if !*observed {
		*initial = current
		*observed = true
	}
	if *initial == 0 {
		return 0
	}
	return (current - *initial) / *initial
}

// rebaseGainSeries shifts the gain series so it starts at zero: gain is
// reported since the first day in the requested range, not since inception.
func rebaseGainSeries(s *models.TimeSeries) {
	if s.IsEmpty() {
		return
	}
	base := s.Points[0].Value
	for i := range s.Points {
		s.Points[i].Value -= base
	}
}

// monthlyDividends buckets each snapshot's same-day dividend by calendar
// month. This is a separate pass over the snapshots rather than the day
// iterator: a snapshot's dividend belongs to its own date only, while the
// iterator revisits a snapshot once per carried-forward day.
func monthlyDividends(snapshots []models.Snapshot, start, end time.Time) *models.TimeSeries {
	totals := make(map[time.Time]float64)
	for i := range snapshots {
		day := models.Day(snapshots[i].Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		if snapshots[i].Dividend == 0 {
			continue
		}
		month := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals[month] += snapshots[i].Dividend
	}

	points := make([]models.SeriesPoint, 0, len(totals))
	for month, total := range totals {
		points = append(points, models.SeriesPoint{Date: month, Value: total})
	}
	return models.NewTimeSeries(points...)
}

// finalHoldings values the final snapshot's share map once at the end date,
// carrying unit counts, base-currency values, reference info, and the latest
// live price where supplied.
func finalHoldings(result *models.PerformancePortfolio, last *models.Snapshot, end time.Time, market *models.MarketBundle, opts CalcOptions) error {
	rates := dayRateLookup(market, end)

	total := 0.0
	for ticker, units := range last.NumShares {
		value := units * market.CloseAt(ticker, end)
		currency := tickerCurrency(market, ticker)

		var converted float64
		if opts.StrictRates {
			v, err := ExchangeStrict(value, currency, opts.BaseCurrency, rates)
			if err != nil {
				return fmt.Errorf("valuing final holding %s: %w", ticker, err)
			}
			converted = v
		} else {
			converted = Exchange(value, currency, opts.BaseCurrency, rates)
		}

		result.Holdings[ticker] = models.HoldingDetail{
			Ticker:    ticker,
			Units:     units,
			Value:     converted,
			Info:      market.Info[ticker],
			LivePrice: market.LivePrices[ticker],
		}
		total += converted
	}

	result.TotalHoldingsValue = total
	return nil
}
