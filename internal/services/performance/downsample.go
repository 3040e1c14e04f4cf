package performance

import (
	"github.com/folioworks/folio/internal/models"
)

// DownsampleToWeekly keeps the last point per ISO week. The final point is
// always kept so charts end on the latest computed day.
func DownsampleToWeekly(s *models.TimeSeries) *models.TimeSeries {
	if s.IsEmpty() {
		return models.NewTimeSeries()
	}

	weekly := models.NewTimeSeries()
	for i, p := range s.Points {
		if i == len(s.Points)-1 {
			weekly.Append(p.Date, p.Value)
			continue
		}
		y1, w1 := p.Date.ISOWeek()
		y2, w2 := s.Points[i+1].Date.ISOWeek()
		if w1 != w2 || y1 != y2 {
			weekly.Append(p.Date, p.Value)
		}
	}
	return weekly
}

// DownsampleToMonthly keeps the last point per calendar month.
func DownsampleToMonthly(s *models.TimeSeries) *models.TimeSeries {
	if s.IsEmpty() {
		return models.NewTimeSeries()
	}

	monthly := models.NewTimeSeries()
	for i, p := range s.Points {
		if i == len(s.Points)-1 ||
			s.Points[i+1].Date.Month() != p.Date.Month() ||
			s.Points[i+1].Date.Year() != p.Date.Year() {
			monthly.Append(p.Date, p.Value)
		}
	}
	return monthly
}
