package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/ports"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

// SVGRenderer draws chart specifications as inline SVG
type SVGRenderer struct {
	width  int
	height int
}

var _ ports.ChartRenderer = (*SVGRenderer)(nil)

// NewSVG creates a renderer producing charts of the given pixel size
func NewSVG(width, height int) *SVGRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &SVGRenderer{width: width, height: height}
}

// Render returns a container div holding the SVG and a script that exposes the
// chart data to the page as window.ticketCharts[id].
func (r *SVGRenderer) Render(spec domain.ChartSpec) (*domain.ChartFragment, error) {
	if len(spec.Dates) == 0 || len(spec.Series) == 0 {
		return nil, errors.New("chart has no data")
	}

	ch := chart.Chart{
		Title:      spec.Title,
		TitleStyle: chart.Style{FontSize: spec.Font.Size},
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           spec.XAxisTitle,
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Range:          xRange(spec.Dates),
		},
		YAxis: chart.YAxis{
			Name:  spec.YAxisTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: spec.MaxValue() + 1},
		},
	}

	for _, s := range spec.Series {
		ch.Series = append(ch.Series, timeSeries(spec, s))
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{FontSize: spec.LegendFont.Size})}

	var buf bytes.Buffer
	if err := ch.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	id := "ticket-chart-" + uuid.NewString()

	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart data: %w", err)
	}

	html := fmt.Sprintf(`<div class="ticket-chart" id="%s">%s</div>`, id, buf.String())
	script := fmt.Sprintf("window.ticketCharts = window.ticketCharts || {};\nwindow.ticketCharts[%q] = %s;", id, data)

	return &domain.ChartFragment{
		HTML:    html,
		Scripts: []string{script},
	}, nil
}

// xRange pads the date axis by half a day on each side so a single date still has a width
func xRange(dates []time.Time) *chart.ContinuousRange {
	first, last := dates[0], dates[len(dates)-1]
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(first.Add(-12 * time.Hour)),
		Max: chart.TimeToFloat64(last.Add(12 * time.Hour)),
	}
}

func timeSeries(spec domain.ChartSpec, s domain.ChartSeries) chart.TimeSeries {
	color := drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#"))

	style := chart.Style{
		StrokeColor: color,
		StrokeWidth: 2,
		DotColor:    color,
		DotWidth:    3,
	}
	if spec.Type == domain.ChartTypeScatter {
		style.StrokeWidth = chart.Disabled
		style.DotWidth = 5
	}

	xs := spec.Dates
	ys := s.Values
	// go-chart needs two points per series
	if len(xs) == 1 {
		xs = []time.Time{xs[0], xs[0].Add(time.Second)}
		ys = []float64{ys[0], ys[0]}
	}

	return chart.TimeSeries{
		Name:    s.Name,
		XValues: xs,
		YValues: ys,
		Style:   style,
	}
}
