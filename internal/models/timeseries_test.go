package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestTimeSeries_Get_ForwardFill(t *testing.T) {
	s := NewTimeSeries(
		SeriesPoint{Date: d(2024, 1, 1), Value: 10},
		SeriesPoint{Date: d(2024, 1, 5), Value: 12},
		SeriesPoint{Date: d(2024, 1, 10), Value: 8},
	)

	// Exact hits
	assert.Equal(t, 10.0, s.Get(d(2024, 1, 1)))
	assert.Equal(t, 12.0, s.Get(d(2024, 1, 5)))

	// Gap days forward-fill from the most recent point
	assert.Equal(t, 10.0, s.Get(d(2024, 1, 3)))
	assert.Equal(t, 12.0, s.Get(d(2024, 1, 9)))

	// Before the first point clamps to the first value
	assert.Equal(t, 10.0, s.Get(d(2023, 12, 25)))

	// After the last point clamps to the last value
	assert.Equal(t, 8.0, s.Get(d(2024, 6, 1)))
}

func TestTimeSeries_Get_Empty(t *testing.T) {
	s := NewTimeSeries()
	assert.Equal(t, 0.0, s.Get(d(2024, 1, 1)))
	assert.Equal(t, 0.0, s.Last())
}

func TestTimeSeries_Get_IgnoresTimeOfDay(t *testing.T) {
	s := NewTimeSeries(SeriesPoint{Date: d(2024, 3, 1), Value: 5})
	// A late-evening timestamp on the same calendar day still hits the point.
	late := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 5.0, s.Get(late))
}

func TestTimeSeries_Last(t *testing.T) {
	s := NewTimeSeries(
		SeriesPoint{Date: d(2024, 1, 1), Value: 1},
		SeriesPoint{Date: d(2024, 2, 1), Value: 2},
	)
	assert.Equal(t, 2.0, s.Last())
}

func TestTimeSeries_New_SortsAndDropsZeroDates(t *testing.T) {
	s := NewTimeSeries(
		SeriesPoint{Date: d(2024, 2, 1), Value: 2},
		SeriesPoint{Value: 99}, // zero date, dropped
		SeriesPoint{Date: d(2024, 1, 1), Value: 1},
	)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 1.0, s.Points[0].Value)
	assert.Equal(t, 2.0, s.Points[1].Value)
}

func TestTimeSeries_MergeWith_EmptyOtherReturnsSelf(t *testing.T) {
	s := NewTimeSeries(SeriesPoint{Date: d(2024, 1, 1), Value: 1})
	merged := s.MergeWith(NewTimeSeries())
	assert.Same(t, s, merged)
}

func TestTimeSeries_MergeWith_OtherRangeWins(t *testing.T) {
	// Cached data for Jan 1..10, fresh fetch covering Jan 4..7 with
	// corrected values. Cached points inside [Jan 4, Jan 7] must vanish.
	cached := NewTimeSeries(
		SeriesPoint{Date: d(2024, 1, 1), Value: 1},
		SeriesPoint{Date: d(2024, 1, 4), Value: 4},
		SeriesPoint{Date: d(2024, 1, 6), Value: 6},
		SeriesPoint{Date: d(2024, 1, 10), Value: 10},
	)
	fresh := NewTimeSeries(
		SeriesPoint{Date: d(2024, 1, 4), Value: 40},
		SeriesPoint{Date: d(2024, 1, 5), Value: 50},
		SeriesPoint{Date: d(2024, 1, 7), Value: 70},
	)

	merged := cached.MergeWith(fresh)

	require.Equal(t, 5, merged.Len())
	assert.Equal(t, 1.0, merged.Get(d(2024, 1, 1)))
	assert.Equal(t, 40.0, merged.Get(d(2024, 1, 4)))
	assert.Equal(t, 50.0, merged.Get(d(2024, 1, 5)))
	assert.Equal(t, 70.0, merged.Get(d(2024, 1, 7)))
	assert.Equal(t, 10.0, merged.Get(d(2024, 1, 10)))

	// Within other's covered range, merged agrees with other everywhere.
	for day := d(2024, 1, 4); !day.After(d(2024, 1, 7)); day = day.AddDate(0, 0, 1) {
		assert.Equal(t, fresh.Get(day), merged.Get(day), "mismatch on %s", day.Format(DateFormat))
	}

	// Originals untouched
	assert.Equal(t, 4, cached.Len())
	assert.Equal(t, 3, fresh.Len())
}

func TestTimeSeries_MergeWith_IntoEmpty(t *testing.T) {
	fresh := NewTimeSeries(SeriesPoint{Date: d(2024, 1, 1), Value: 1})
	merged := NewTimeSeries().MergeWith(fresh)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, 1.0, merged.Last())
}

func TestTimeSeries_ValidateUnique(t *testing.T) {
	ok := NewTimeSeries(
		SeriesPoint{Date: d(2024, 1, 1), Value: 1},
		SeriesPoint{Date: d(2024, 1, 2), Value: 2},
	)
	assert.NoError(t, ok.ValidateUnique())

	dup := NewTimeSeries(
		SeriesPoint{Date: d(2024, 1, 1), Value: 1},
		SeriesPoint{Date: d(2024, 1, 1), Value: 2},
	)
	assert.Error(t, dup.ValidateUnique())
}

func TestTimeSeries_JSONRoundTrip(t *testing.T) {
	s := NewTimeSeries(
		SeriesPoint{Date: d(2021, 2, 8), Value: 38.2775},
		SeriesPoint{Date: d(2021, 2, 9), Value: 39.5},
	)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[["2021-02-08",38.2775],["2021-02-09",39.5]]`, string(data))

	var back TimeSeries
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, 2, back.Len())
	assert.Equal(t, 38.2775, back.Get(d(2021, 2, 8)))
}

func TestTimeSeries_UnmarshalJSON_DropsInvalidEntries(t *testing.T) {
	raw := `[["2024-01-02",10],["not-a-date",11],["2024-01-01",9]]`
	var s TimeSeries
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	// Invalid entry dropped, remainder re-sorted ascending.
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 9.0, s.Points[0].Value)
	assert.Equal(t, 10.0, s.Points[1].Value)
}

func TestDay_NormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	ts := time.Date(2024, 5, 10, 17, 45, 3, 0, loc)
	day := Day(ts)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), day)
}
