package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioworks/folio/internal/models"
)

func TestDownsampleToWeekly(t *testing.T) {
	// Mon Jan 1 2024 through Wed Jan 10: two full ISO weeks plus a stub.
	daily := models.NewTimeSeries()
	for i := 0; i < 10; i++ {
		daily.Append(day(2024, 1, 1+i), float64(i+1))
	}

	weekly := DownsampleToWeekly(daily)

	// Last point of week 1 is Sun Jan 7 (value 7); Jan 10 is the final
	// point and always kept.
	require.Equal(t, 2, weekly.Len())
	assert.Equal(t, day(2024, 1, 7), weekly.Points[0].Date)
	assert.Equal(t, 7.0, weekly.Points[0].Value)
	assert.Equal(t, day(2024, 1, 10), weekly.Points[1].Date)
	assert.Equal(t, 10.0, weekly.Points[1].Value)
}

func TestDownsampleToWeekly_Empty(t *testing.T) {
	assert.True(t, DownsampleToWeekly(models.NewTimeSeries()).IsEmpty())
}

func TestDownsampleToMonthly(t *testing.T) {
	daily := models.NewTimeSeries(
		models.SeriesPoint{Date: day(2024, 1, 15), Value: 1},
		models.SeriesPoint{Date: day(2024, 1, 31), Value: 2},
		models.SeriesPoint{Date: day(2024, 2, 10), Value: 3},
		models.SeriesPoint{Date: day(2024, 2, 20), Value: 4},
	)

	monthly := DownsampleToMonthly(daily)

	require.Equal(t, 2, monthly.Len())
	assert.Equal(t, day(2024, 1, 31), monthly.Points[0].Date)
	assert.Equal(t, 2.0, monthly.Points[0].Value)
	assert.Equal(t, day(2024, 2, 20), monthly.Points[1].Date)
	assert.Equal(t, 4.0, monthly.Points[1].Value)
}

func TestDownsampleToMonthly_SinglePoint(t *testing.T) {
	s := models.NewTimeSeries(models.SeriesPoint{Date: day(2024, 3, 5), Value: 9})
	monthly := DownsampleToMonthly(s)
	require.Equal(t, 1, monthly.Len())
	assert.Equal(t, 9.0, monthly.Points[0].Value)
}
