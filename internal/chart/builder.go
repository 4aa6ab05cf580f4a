package chart

import (
	"errors"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/ports"
)

// MaxLookbackDays is the number of days between 0001-01-01 and 9999-12-31.
// Larger windows always start before year 1.
const MaxLookbackDays = 3652059

const (
	fontFamily     = "Roboto"
	fontSize       = 20
	legendFontSize = 18
	dateKeyLayout  = "2006-01-02"
)

var levelColors = map[domain.PriorityLevel]string{
	domain.PriorityLow:     "#25BE75",
	domain.PriorityMedium:  "#FED402",
	domain.PriorityHigh:    "#FF8C00",
	domain.PriorityHighest: "#FF0000",
}

// labels the tracker may add later get neutral greys
var fallbackColors = []string{"#7F8C8D", "#95A5A6", "#5D6D7E", "#BDC3C7"}

// Builder groups tickets into per-priority daily counts and hands the result to a renderer
type Builder struct {
	renderer ports.ChartRenderer
	clock    clockwork.Clock
	location *time.Location
	labels   Labels
}

// Option configures a Builder
type Option func(*Builder)

// WithClock sets the clock that anchors the lookback window
func WithClock(clock clockwork.Clock) Option {
	return func(b *Builder) {
		b.clock = clock
	}
}

// WithLocation sets the location calendar dates are taken in
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.location = loc
		}
	}
}

// WithLabels sets the chart title, axis and legend labels
func WithLabels(labels Labels) Option {
	return func(b *Builder) {
		b.labels = labels
	}
}

// NewBuilder creates a chart builder rendering through renderer
func NewBuilder(renderer ports.ChartRenderer, opts ...Option) *Builder {
	b := &Builder{
		renderer: renderer,
		clock:    clockwork.NewRealClock(),
		location: time.UTC,
		labels:   EnglishLabels,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the rendered chart, or nil when there is nothing to draw
func (b *Builder) Build(tickets []domain.Ticket, windowDays int, chartType domain.ChartType) (*domain.ChartFragment, error) {
	spec, err := b.Spec(tickets, windowDays, chartType)
	if errors.Is(err, domain.ErrDateRangeOverflow) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, nil
	}
	return b.renderer.Render(*spec)
}

// Spec computes the chart specification. It returns nil when no ticket started
// within the window and ErrDateRangeOverflow when the window cannot be represented.
func (b *Builder) Spec(tickets []domain.Ticket, windowDays int, chartType domain.ChartType) (*domain.ChartSpec, error) {
	window := domain.ClampWindow(windowDays)
	rangeStart, err := b.rangeStart(window)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]map[domain.TicketPriority]int)
	days := make(map[string]time.Time)
	seen := make(map[domain.TicketPriority]struct{})

	for i := range tickets {
		start := tickets[i].DateStart.In(b.location)
		if start.Before(rangeStart) {
			continue
		}

		key := start.Format(dateKeyLayout)
		if _, ok := days[key]; !ok {
			days[key] = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, b.location)
			counts[key] = make(map[domain.TicketPriority]int)
		}
		counts[key][tickets[i].Priority]++
		seen[tickets[i].Priority] = struct{}{}
	}

	if len(days) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	priorities := make([]domain.TicketPriority, 0, len(seen))
	for p := range seen {
		priorities = append(priorities, p)
	}
	domain.SortPriorities(priorities)

	spec := &domain.ChartSpec{
		Type:        domain.ParseChartType(string(chartType)),
		Title:       b.labels.Title,
		XAxisTitle:  b.labels.XAxis(window),
		YAxisTitle:  b.labels.YAxis,
		LegendTitle: b.labels.Legend,
		Font:        domain.ChartFont{Family: fontFamily, Size: fontSize},
		LegendFont:  domain.ChartFont{Family: fontFamily, Size: legendFontSize},
		Dates:       make([]time.Time, len(keys)),
		Series:      make([]domain.ChartSeries, 0, len(priorities)),
	}
	for i, key := range keys {
		spec.Dates[i] = days[key]
	}

	unknown := 0
	for _, p := range priorities {
		color, ok := levelColors[p.Level()]
		if !ok {
			color = fallbackColors[unknown%len(fallbackColors)]
			unknown++
		}

		values := make([]float64, len(keys))
		for i, key := range keys {
			values[i] = float64(counts[key][p])
		}

		spec.Series = append(spec.Series, domain.ChartSeries{
			Name:   string(p),
			Color:  color,
			Values: values,
		})
	}

	return spec, nil
}

func (b *Builder) rangeStart(window int) (time.Time, error) {
	if window > MaxLookbackDays {
		return time.Time{}, domain.ErrDateRangeOverflow
	}
	start := b.clock.Now().In(b.location).AddDate(0, 0, -window)
	if start.Year() < 1 {
		return time.Time{}, domain.ErrDateRangeOverflow
	}
	return start, nil
}
