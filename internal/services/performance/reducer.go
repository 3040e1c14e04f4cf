package performance

import (
	"github.com/folioworks/folio/internal/models"
)

// ReduceActivities folds a ledger of dated activities into daily snapshots.
// Activities must arrive sorted ascending by date (ties in insertion order,
// stable); each distinct activity day produces exactly one snapshot built by
// copying the previous day's state and applying that day's activities in
// ledger order. A snapshot represents portfolio state from its date until
// superseded by the next one.
func ReduceActivities(activities []models.Activity) []models.Snapshot {
	if len(activities) == 0 {
		return nil
	}

	snapshots := make([]models.Snapshot, 0)
	var current *models.Snapshot

	for _, activity := range activities {
		day := models.Day(activity.Date)

		if current == nil || !current.Date.Equal(day) {
			next := models.Snapshot{
				Date:      day,
				NumShares: make(map[string]float64),
			}
			if current != nil {
				next.Cash = current.Cash
				next.CashFlow = current.CashFlow
				next.NumShares = current.CopyShares()
			}
			// Dividend is same-day only: it resets on every new snapshot.
			snapshots = append(snapshots, next)
			current = &snapshots[len(snapshots)-1]
		}

		applyActivity(current, activity)
	}

	// Disposals can leave zero-unit entries; drop them so downstream logic
	// can distinguish "never held" from "fully sold".
	for i := range snapshots {
		pruneZeroHoldings(&snapshots[i])
	}

	return snapshots
}

// applyActivity mutates the snapshot under construction with one activity.
func applyActivity(s *models.Snapshot, activity models.Activity) {
	switch activity.Type {
	case models.ActivityDeposit:
		s.Cash += activity.Amount
		s.CashFlow += activity.Amount

	case models.ActivityDividend:
		s.Cash += activity.Amount
		s.Dividend += activity.Amount

	case models.ActivityStockDividend:
		s.NumShares[activity.Ticker] += activity.Units

	case models.ActivityTrade:
		// Cost is signed: negative cost is sale proceeds flowing back to cash.
		s.Cash -= activity.Cost
		for _, line := range activity.Trades {
			s.NumShares[line.Ticker] += line.Units
		}
	}
}

// pruneZeroHoldings removes tickers whose position has gone to zero.
func pruneZeroHoldings(s *models.Snapshot) {
	for ticker, units := range s.NumShares {
		if units == 0 {
			delete(s.NumShares, ticker)
		}
	}
}
