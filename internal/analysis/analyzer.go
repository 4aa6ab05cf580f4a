package analysis

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/logger"
)

// ChartBuilder produces the per-priority trend chart. A nil fragment means no chart.
type ChartBuilder interface {
	Build(tickets []domain.Ticket, windowDays int, chartType domain.ChartType) (*domain.ChartFragment, error)
}

// Analyzer computes the aggregate ticket report
type Analyzer struct {
	policy   Policy
	clock    clockwork.Clock
	location *time.Location
	charts   ChartBuilder
	logger   logger.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithPolicy sets the counting policy
func WithPolicy(policy Policy) Option {
	return func(a *Analyzer) {
		a.policy = policy
	}
}

// WithClock sets the clock that anchors the lookback window
func WithClock(clock clockwork.Clock) Option {
	return func(a *Analyzer) {
		a.clock = clock
	}
}

// WithLocation sets the location the lookback window is measured in
func WithLocation(loc *time.Location) Option {
	return func(a *Analyzer) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithChartBuilder attaches a chart builder. Without one the chart is always absent.
func WithChartBuilder(builder ChartBuilder) Option {
	return func(a *Analyzer) {
		a.charts = builder
	}
}

// WithLogger sets the logger used for chart failures
func WithLogger(log logger.Logger) Option {
	return func(a *Analyzer) {
		a.logger = log
	}
}

// New creates an analyzer using DefaultPolicy unless configured otherwise
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		policy:   DefaultPolicy,
		clock:    clockwork.NewRealClock(),
		location: time.UTC,
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the report over tickets. The urgent, late and on-time counts
// never depend on the window; only the chart (and solved tickets under a policy
// with SolvedInWindow) do.
func (a *Analyzer) Analyze(ctx context.Context, tickets []domain.Ticket, windowDays int, chartType domain.ChartType) (*domain.Analysis, error) {
	window := domain.ClampWindow(windowDays)
	rangeStart := a.clock.Now().In(a.location).AddDate(0, 0, -window)

	var (
		urgent, solved, late, solvedOnTime int
		closed                             int
		resolutionSeconds                  float64
	)

	for i := range tickets {
		t := &tickets[i]

		if t.Priority.Urgent() && !t.Status.Finished() {
			urgent++
		}

		if a.isLate(t) {
			late++
		}

		if t.Status == domain.TicketStatusClosed {
			if d, ok := t.ResolutionTime(); ok {
				closed++
				resolutionSeconds += d.Seconds()
			}

			if a.policy.SolvedInWindow && t.DateStart.Before(rangeStart) {
				continue
			}
			solved++
			if t.OnTime {
				solvedOnTime++
			}
		}
	}

	onTimeWhole := solved
	if a.policy.OnTimeOverTotal {
		onTimeWhole = len(tickets)
	}

	result := &domain.Analysis{
		TotalUrgentTickets: urgent,
		TotalSolvedTickets: solved,
		LateTicketsData: domain.LateTickets{
			LateTickets:    late,
			PercentageLate: domain.Percentage(late, len(tickets)),
		},
		OnTimeTicketsData: domain.OnTimeTickets{
			SolvedTicketsOnTime:    solvedOnTime,
			PercentageSolvedOnTime: domain.Percentage(solvedOnTime, onTimeWhole),
		},
	}

	if closed > 0 {
		speed := domain.ResolutionSpeedFromSeconds(resolutionSeconds / float64(closed))
		result.ResolutionAverageSpeed = &speed
	}

	result.Chart = a.chart(ctx, tickets, window, chartType)

	return result, nil
}

func (a *Analyzer) isLate(t *domain.Ticket) bool {
	if t.OnTime {
		return false
	}
	if a.policy.LateOpenOnly {
		return t.Status == domain.TicketStatusOpen
	}
	return t.Status.Active()
}

// chart never fails the report; builder errors are logged and the chart is omitted
func (a *Analyzer) chart(ctx context.Context, tickets []domain.Ticket, window int, chartType domain.ChartType) *domain.ChartFragment {
	if a.charts == nil {
		return nil
	}

	fragment, err := a.charts.Build(tickets, window, chartType)
	if err != nil {
		a.logger.Error(ctx, "failed to build ticket chart", err, map[string]interface{}{
			"window_days": window,
			"chart_type":  string(chartType),
		})
		return nil
	}
	return fragment
}
