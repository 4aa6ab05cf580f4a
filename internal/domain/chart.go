package domain

import (
	"strings"
	"time"
)

// ChartType selects how priority series are drawn
type ChartType string

const (
	ChartTypeLine    ChartType = "line"
	ChartTypeScatter ChartType = "scatter"
)

// ParseChartType maps a request value to a chart type, falling back to a line chart
func ParseChartType(value string) ChartType {
	switch ChartType(strings.ToLower(strings.TrimSpace(value))) {
	case ChartTypeScatter:
		return ChartTypeScatter
	default:
		return ChartTypeLine
	}
}

// ChartFont describes a font family and size
type ChartFont struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
}

// ChartSeries is one priority line. Values align with ChartSpec.Dates.
type ChartSeries struct {
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

// ChartSpec is a renderer-independent description of the ticket trend chart
type ChartSpec struct {
	Type        ChartType     `json:"type"`
	Title       string        `json:"title"`
	XAxisTitle  string        `json:"xaxis_title"`
	YAxisTitle  string        `json:"yaxis_title"`
	LegendTitle string        `json:"legend_title"`
	Font        ChartFont     `json:"font"`
	LegendFont  ChartFont     `json:"legend_font"`
	Dates       []time.Time   `json:"dates"`
	Series      []ChartSeries `json:"series"`
}

// MaxValue returns the largest value across all series
func (s *ChartSpec) MaxValue() float64 {
	var max float64
	for _, series := range s.Series {
		for _, v := range series.Values {
			if v > max {
				max = v
			}
		}
	}
	return max
}
