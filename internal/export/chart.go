package export

import (
	"bytes"
	"fmt"

	"github.com/tenpin/leaguebook/internal/standings"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	barColor   = drawing.ColorFromHex("1f6feb")
	background = drawing.ColorWhite
	textColor  = drawing.ColorFromHex("24292f")
)

// StandingsChartPNG renders team points as a bar chart in standings order.
func StandingsChartPNG(snap *standings.Snapshot) ([]byte, error) {
	maxPoints := 0.0
	bars := make([]chart.Value, 0, len(snap.Teams))
	for _, e := range snap.Teams {
		maxPoints = max(maxPoints, e.Points)
		bars = append(bars, chart.Value{
			Label: e.Team.Name,
			Value: e.Points,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: "No teams", Value: 0})
	}
	// The bar chart refuses an empty value range.
	if maxPoints == 0 {
		maxPoints = 1
	}

	graph := chart.BarChart{
		Title:      snap.League.Name,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      max(400, 120*len(bars)),
		Height:     400,
		BarWidth:   60,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: background},
		XAxis:      chart.Style{FontColor: textColor},
		YAxis: chart.YAxis{
			Name:  "Points",
			Style: chart.Style{FontColor: textColor},
			Range: &chart.ContinuousRange{Min: 0, Max: maxPoints},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render standings chart: %w", err)
	}
	return buf.Bytes(), nil
}
