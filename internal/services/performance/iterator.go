package performance

import (
	"time"

	"github.com/folioworks/folio/internal/models"
)

// DayFunc receives one calendar day, the snapshot valid as of that day, and
// the preceding snapshot (nil for the first). The previous snapshot lets the
// calculator detect same-day cash-flow events for TWRR.
type DayFunc func(day time.Time, snapshot *models.Snapshot, previous *models.Snapshot)

// ForEachDay walks every calendar day in [start, end] inclusive, invoking fn
// exactly once per day with the snapshot in effect on that day. For snapshot
// i the effective range runs from max(snapshot.Date, start) to the day
// before snapshot i+1 (or end, for the last snapshot), clamped to end.
// Days between ledger events are filled with the last known snapshot.
func ForEachDay(snapshots []models.Snapshot, start, end time.Time, fn DayFunc) {
	if len(snapshots) == 0 {
		return
	}

	start = models.Day(start)
	end = models.Day(end)

	for i := range snapshots {
		from := models.Day(snapshots[i].Date)
		if from.Before(start) {
			from = start
		}

		to := end
		if i+1 < len(snapshots) {
			beforeNext := models.Day(snapshots[i+1].Date).AddDate(0, 0, -1)
			if beforeNext.Before(to) {
				to = beforeNext
			}
		}

		var previous *models.Snapshot
		if i > 0 {
			previous = &snapshots[i-1]
		}

		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			fn(day, &snapshots[i], previous)
		}
	}
}
