// Package models defines data structures for Folio
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateFormat is the wire format for calendar dates in serialized series.
const DateFormat = "2006-01-02"

// Day normalizes a timestamp to UTC midnight. All engine date comparisons
// operate on Day-normalized values so "same day" is unambiguous regardless
// of the time-of-day or zone a caller supplies.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SeriesPoint is a single dated value in a TimeSeries.
type SeriesPoint struct {
	Date  time.Time
	Value float64
}

// TimeSeries is a sparse, date-ordered value sequence. Points are strictly
// ascending by date with no duplicates; market data is not published every
// calendar day, so lookups forward-fill from the most recent known point.
//
// A TimeSeries is owned by its producer while being built and treated as
// immutable once handed to a caller.
type TimeSeries struct {
	Points []SeriesPoint
}

// NewTimeSeries builds a series from points, sorting ascending by date.
// Point dates are normalized to UTC midnight; zero dates are dropped.
func NewTimeSeries(points ...SeriesPoint) *TimeSeries {
	s := &TimeSeries{Points: make([]SeriesPoint, 0, len(points))}
	for _, p := range points {
		if p.Date.IsZero() {
			continue
		}
		s.Points = append(s.Points, SeriesPoint{Date: Day(p.Date), Value: p.Value})
	}
	sort.SliceStable(s.Points, func(i, j int) bool {
		return s.Points[i].Date.Before(s.Points[j].Date)
	})
	return s
}

// Len returns the number of points in the series.
func (s *TimeSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// IsEmpty reports whether the series has no points.
func (s *TimeSeries) IsEmpty() bool {
	return s.Len() == 0
}

// Append adds a point at the end of the series. The caller must append in
// ascending date order; Append is used by the calculator's day iteration
// which visits dates monotonically.
func (s *TimeSeries) Append(date time.Time, value float64) {
	s.Points = append(s.Points, SeriesPoint{Date: Day(date), Value: value})
}

// Get returns the value at the greatest indexed date <= date (step /
// forward-fill lookup). Dates before the first point clamp to the first
// value, dates after the last point clamp to the last value, and an empty
// series returns 0.
func (s *TimeSeries) Get(date time.Time) float64 {
	if s.Len() == 0 {
		return 0
	}

	day := Day(date)

	// Right bisection: first index whose date is strictly after day.
	idx := sort.Search(len(s.Points), func(i int) bool {
		return s.Points[i].Date.After(day)
	})

	if idx == 0 {
		return s.Points[0].Value
	}
	return s.Points[idx-1].Value
}

// Last returns the value of the final point, or 0 if the series is empty.
func (s *TimeSeries) Last() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Value
}

// First returns the first point and true, or a zero point and false when empty.
func (s *TimeSeries) First() (SeriesPoint, bool) {
	if s.Len() == 0 {
		return SeriesPoint{}, false
	}
	return s.Points[0], true
}

// MergeWith returns a new series where other's covered date range fully
// replaces the overlapping sub-range of s: every point of s strictly outside
// [other.first, other.last] is kept, every point of other is taken, and the
// result is re-sorted. Freshly fetched data can therefore replace a cached
// sub-range without manual deduplication. Merging an empty series returns s.
func (s *TimeSeries) MergeWith(other *TimeSeries) *TimeSeries {
	if other.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return NewTimeSeries(other.Points...)
	}

	from := other.Points[0].Date
	to := other.Points[len(other.Points)-1].Date

	merged := make([]SeriesPoint, 0, len(s.Points)+len(other.Points))
	for _, p := range s.Points {
		if p.Date.Before(from) || p.Date.After(to) {
			merged = append(merged, p)
		}
	}
	merged = append(merged, other.Points...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	return &TimeSeries{Points: merged}
}

// ValidateUnique checks that no two points share a date. Duplicate dates are
// an invariant violation in series the engine produces; this check is not
// auto-invoked on construction and must be called where duplicate-free data
// is assumed.
func (s *TimeSeries) ValidateUnique() error {
	for i := 1; i < s.Len(); i++ {
		if s.Points[i].Date.Equal(s.Points[i-1].Date) {
			return fmt.Errorf("duplicate series date %s", s.Points[i].Date.Format(DateFormat))
		}
	}
	return nil
}

// MarshalJSON serializes the series as an ordered list of [date, value]
// pairs with ISO calendar dates, e.g. [["2021-02-08", 38.2775]].
func (s *TimeSeries) MarshalJSON() ([]byte, error) {
	pairs := make([][2]json.RawMessage, 0, s.Len())
	for _, p := range s.Points {
		date, err := json.Marshal(p.Date.Format(DateFormat))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]json.RawMessage{date, value})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON parses the [date, value] pair wire format. Entries with
// unparseable dates or values are dropped rather than failing the whole
// series; the result is sorted ascending by date.
func (s *TimeSeries) UnmarshalJSON(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("time series wire format: %w", err)
	}

	points := make([]SeriesPoint, 0, len(pairs))
	for _, pair := range pairs {
		var dateStr string
		if err := json.Unmarshal(pair[0], &dateStr); err != nil {
			continue
		}
		date, err := time.Parse(DateFormat, dateStr)
		if err != nil {
			// Tolerate timestamps with a time component
			date, err = time.Parse(time.RFC3339, dateStr)
			if err != nil {
				continue
			}
		}
		var value float64
		if err := json.Unmarshal(pair[1], &value); err != nil {
			continue
		}
		points = append(points, SeriesPoint{Date: Day(date), Value: value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	s.Points = points
	return nil
}
