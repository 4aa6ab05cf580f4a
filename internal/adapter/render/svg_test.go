package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketstats/ticketstats/internal/domain"
)

func testSpec(chartType domain.ChartType, dates int) domain.ChartSpec {
	spec := domain.ChartSpec{
		Type:        chartType,
		Title:       "Tickets created per day, by priority",
		XAxisTitle:  "Last 7 days",
		YAxisTitle:  "Open tickets",
		LegendTitle: "Priority",
		Font:        domain.ChartFont{Family: "Roboto", Size: 20},
		LegendFont:  domain.ChartFont{Family: "Roboto", Size: 18},
	}
	for i := 0; i < dates; i++ {
		spec.Dates = append(spec.Dates, time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC))
	}
	for _, s := range []struct{ name, color string }{{"Baixa", "#25BE75"}, {"Alta", "#FF8C00"}} {
		values := make([]float64, dates)
		for i := range values {
			values[i] = float64(i % 3)
		}
		spec.Series = append(spec.Series, domain.ChartSeries{Name: s.name, Color: s.color, Values: values})
	}
	return spec
}

func TestSVGRenderer_Render(t *testing.T) {
	tests := []struct {
		name      string
		chartType domain.ChartType
		dates     int
	}{
		{"line", domain.ChartTypeLine, 5},
		{"scatter", domain.ChartTypeScatter, 5},
		{"single date", domain.ChartTypeLine, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragment, err := NewSVG(800, 400).Render(testSpec(tt.chartType, tt.dates))
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(fragment.HTML, `<div class="ticket-chart" id="ticket-chart-`))
			assert.Contains(t, fragment.HTML, "<svg")
			require.Len(t, fragment.Scripts, 1)
			assert.Contains(t, fragment.Scripts[0], "window.ticketCharts[")
			assert.Contains(t, fragment.Scripts[0], `"name":"Baixa"`)
		})
	}
}

func TestSVGRenderer_UniqueIDs(t *testing.T) {
	r := NewSVG(0, 0)
	a, err := r.Render(testSpec(domain.ChartTypeLine, 2))
	require.NoError(t, err)
	b, err := r.Render(testSpec(domain.ChartTypeLine, 2))
	require.NoError(t, err)

	assert.NotEqual(t, a.HTML[:60], b.HTML[:60])
}

func TestSVGRenderer_EmptySpec(t *testing.T) {
	_, err := NewSVG(800, 400).Render(domain.ChartSpec{})
	assert.Error(t, err)
}
