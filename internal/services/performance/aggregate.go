package performance

import (
	"time"

	"github.com/folioworks/folio/internal/models"
)

// AggregatePortfolios sums per-portfolio results into one consolidated view
// on a common date grid. The grid runs from max(start, the earliest date any
// portfolio has data) to end; value, gain and cash-flow series sum each
// portfolio's forward-filled lookup per day, and monthly dividends sum per
// bucketed month. When no portfolio produced any data there is no grid to
// build and all combined series stay empty.
func AggregatePortfolios(results []*models.PerformancePortfolio, start, end time.Time) *models.PerformanceResult {
	combined := &models.PerformanceResult{
		ValueSeries:      models.NewTimeSeries(),
		GainSeries:       models.NewTimeSeries(),
		CashFlowSeries:   models.NewTimeSeries(),
		MonthlyDividends: models.NewTimeSeries(),
	}

	var earliest time.Time
	for _, r := range results {
		first, ok := r.ValueSeries.First()
		if !ok {
			continue
		}
		if earliest.IsZero() || first.Date.Before(earliest) {
			earliest = first.Date
		}
	}
	if earliest.IsZero() {
		return combined
	}

	from := models.Day(start)
	if earliest.After(from) {
		from = earliest
	}
	to := models.Day(end)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		var value, gain, cashFlow float64
		for _, r := range results {
			value += r.ValueSeries.Get(day)
			gain += r.GainSeries.Get(day)
			cashFlow += r.CashFlowSeries.Get(day)
		}
		combined.ValueSeries.Append(day, value)
		combined.GainSeries.Append(day, gain)
		combined.CashFlowSeries.Append(day, cashFlow)
	}

	combined.MonthlyDividends = sumMonthlyDividends(results)

	return combined
}

// sumMonthlyDividends merges per-portfolio monthly dividend buckets by month.
func sumMonthlyDividends(results []*models.PerformancePortfolio) *models.TimeSeries {
	totals := make(map[time.Time]float64)
	for _, r := range results {
		if r.MonthlyDividends == nil {
			continue
		}
		for _, p := range r.MonthlyDividends.Points {
			totals[p.Date] += p.Value
		}
	}

	points := make([]models.SeriesPoint, 0, len(totals))
	for month, total := range totals {
		points = append(points, models.SeriesPoint{Date: month, Value: total})
	}
	return models.NewTimeSeries(points...)
}
