package performance

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/folioworks/folio/internal/models"
)

// RenderChart renders a PNG line chart of the combined result: portfolio
// value (blue solid) against cumulative net deposits (gray dashed). Long
// ranges are downsampled to weekly points to keep the render fast.
func (s *Service) RenderChart(result *models.PerformanceResult) ([]byte, error) {
	value := result.ValueSeries
	deposits := result.CashFlowSeries
	if value.Len() > 370 {
		value = DownsampleToWeekly(value)
		deposits = DownsampleToWeekly(deposits)
	}

	if value.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", value.Len())
	}

	xValues := make([]time.Time, value.Len())
	valueY := make([]float64, value.Len())
	depositY := make([]float64, value.Len())

	for i, p := range value.Points {
		xValues[i] = p.Date
		valueY[i] = p.Value
		depositY[i] = deposits.Get(p.Date)
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	depositSeries := chart.TimeSeries{
		Name: "Net Deposits",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: depositY,
	}

	graph := chart.Chart{
		Title:  "Portfolio Performance",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			depositSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
