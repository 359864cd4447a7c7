package server

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jpalmerr/telemetryboard/internal/widget"
)

// chart image size in pixels
const (
	chartWidth  = 900
	chartHeight = 320
)

// errNoChartData is returned for figures without any plottable point.
var errNoChartData = errors.New("no chart data")

var (
	chartBackground = hexColor("#0f172a")
	chartForeground = hexColor("#e2e8f0")
)

// renderChartPNG draws the scatter traces of fig as a PNG time chart.
func renderChartPNG(fig widget.Figure) ([]byte, error) {
	series := make([]chart.Series, 0, len(fig.Traces))
	for _, tr := range fig.Traces {
		if tr.Kind != widget.KindScatter || len(tr.X) == 0 || len(tr.X) != len(tr.Y) {
			continue
		}
		xs, ys := tr.X, tr.Y
		// go-chart needs at least two x values to compute a range
		if len(xs) == 1 {
			xs = []time.Time{xs[0], xs[0].Add(time.Second)}
			ys = []float64{ys[0], ys[0]}
		}
		series = append(series, chart.TimeSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			Style:   traceStyle(tr),
		})
	}
	if len(series) == 0 {
		return nil, errNoChartData
	}

	axisStyle := chart.Style{FontColor: chartForeground, StrokeColor: chartForeground}
	ch := chart.Chart{
		Title:      fig.Layout.Title,
		TitleStyle: chart.Style{FontColor: chartForeground},
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis: chart.XAxis{
			Name:           "Time",
			Style:          axisStyle,
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04:05"),
		},
		YAxis:  chart.YAxis{Style: axisStyle},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func traceStyle(tr widget.Trace) chart.Style {
	col := chart.ColorBlue
	if tr.Color != "" {
		col = hexColor(tr.Color)
	}
	width := tr.Width
	if width <= 0 {
		width = 2
	}
	st := chart.Style{
		StrokeColor: col,
		StrokeWidth: width,
	}
	if strings.Contains(tr.Mode, "markers") {
		st.DotColor = col
		st.DotWidth = 3
	}
	return st
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
