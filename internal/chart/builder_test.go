package chart

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketstats/ticketstats/internal/domain"
)

type fakeRenderer struct {
	specs []domain.ChartSpec
	err   error
}

func (r *fakeRenderer) Render(spec domain.ChartSpec) (*domain.ChartFragment, error) {
	r.specs = append(r.specs, spec)
	if r.err != nil {
		return nil, r.err
	}
	return &domain.ChartFragment{HTML: "<div></div>", Scripts: []string{}}, nil
}

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func started(priority domain.TicketPriority, ago time.Duration) domain.Ticket {
	return domain.Ticket{
		ID:        "1",
		Priority:  priority,
		Status:    domain.TicketStatusOpen,
		DateStart: now.Add(-ago),
	}
}

func newTestBuilder(r *fakeRenderer, opts ...Option) *Builder {
	opts = append([]Option{WithClock(clockwork.NewFakeClockAt(now))}, opts...)
	return NewBuilder(r, opts...)
}

func TestBuilder_GroupsByDateAndPriority(t *testing.T) {
	tickets := []domain.Ticket{
		started(domain.TicketPriorityHigh, time.Hour),
		started(domain.TicketPriorityHigh, 2*time.Hour),
		started(domain.TicketPriorityLow, 2*time.Hour),
		started(domain.TicketPriorityLow, 26*time.Hour),
		started(domain.TicketPriorityHighest, 30*24*time.Hour), // outside the window
	}

	spec, err := newTestBuilder(&fakeRenderer{}).Spec(tickets, 7, domain.ChartTypeLine)
	require.NoError(t, err)
	require.NotNil(t, spec)

	require.Len(t, spec.Dates, 2)
	assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), spec.Dates[0])
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), spec.Dates[1])

	require.Len(t, spec.Series, 2)
	assert.Equal(t, "Baixa", spec.Series[0].Name)
	assert.Equal(t, "#25BE75", spec.Series[0].Color)
	assert.Equal(t, []float64{1, 1}, spec.Series[0].Values)
	assert.Equal(t, "Alta", spec.Series[1].Name)
	assert.Equal(t, "#FF8C00", spec.Series[1].Color)
	assert.Equal(t, []float64{0, 2}, spec.Series[1].Values)

	assert.Equal(t, "Last 7 days", spec.XAxisTitle)
	assert.Equal(t, "Roboto", spec.Font.Family)
	assert.EqualValues(t, 20, spec.Font.Size)
	assert.EqualValues(t, 18, spec.LegendFont.Size)
}

func TestBuilder_SeriesOrderedAndColoredByLevel(t *testing.T) {
	tickets := []domain.Ticket{
		started("Urgente", time.Hour),
		started(domain.TicketPriorityHighest, time.Hour),
		started(domain.TicketPriorityMedium, time.Hour),
		started("Bloqueante", time.Hour),
		started(domain.TicketPriorityLow, time.Hour),
		started(domain.TicketPriorityHigh, time.Hour),
	}

	spec, err := newTestBuilder(&fakeRenderer{}).Spec(tickets, 3, domain.ChartTypeLine)
	require.NoError(t, err)

	names := make([]string, 0, len(spec.Series))
	colors := make([]string, 0, len(spec.Series))
	for _, s := range spec.Series {
		names = append(names, s.Name)
		colors = append(colors, s.Color)
	}
	assert.Equal(t, []string{"Baixa", "Média", "Alta", "Altíssima", "Bloqueante", "Urgente"}, names)
	assert.Equal(t, []string{"#25BE75", "#FED402", "#FF8C00", "#FF0000", "#7F8C8D", "#95A5A6"}, colors)
}

func TestBuilder_SparsePriorities(t *testing.T) {
	tickets := []domain.Ticket{started(domain.TicketPriorityHighest, time.Hour)}

	spec, err := newTestBuilder(&fakeRenderer{}).Spec(tickets, 1, domain.ChartTypeScatter)
	require.NoError(t, err)

	require.Len(t, spec.Series, 1)
	assert.Equal(t, "#FF0000", spec.Series[0].Color)
	assert.Equal(t, domain.ChartTypeScatter, spec.Type)
	assert.Equal(t, "Yesterday", spec.XAxisTitle)
}

func TestBuilder_AbsentChart(t *testing.T) {
	tests := []struct {
		name    string
		tickets []domain.Ticket
		window  int
	}{
		{"no tickets", nil, 7},
		{"nothing in window", []domain.Ticket{started(domain.TicketPriorityLow, 10*24*time.Hour)}, 7},
		{"window beyond calendar", []domain.Ticket{started(domain.TicketPriorityLow, time.Hour)}, MaxLookbackDays + 1},
		{"window before year one", []domain.Ticket{started(domain.TicketPriorityLow, time.Hour)}, MaxLookbackDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{}
			fragment, err := newTestBuilder(r).Build(tt.tickets, tt.window, domain.ChartTypeLine)
			require.NoError(t, err)
			assert.Nil(t, fragment)
			assert.Empty(t, r.specs)
		})
	}
}

func TestBuilder_RangeOverflow(t *testing.T) {
	_, err := newTestBuilder(&fakeRenderer{}).Spec(nil, MaxLookbackDays+1, domain.ChartTypeLine)
	assert.True(t, errors.Is(err, domain.ErrDateRangeOverflow))
}

func TestBuilder_LargeWindowIncludesOldTickets(t *testing.T) {
	tickets := []domain.Ticket{started(domain.TicketPriorityLow, 5*365*24*time.Hour)}

	fragment, err := newTestBuilder(&fakeRenderer{}).Build(tickets, 3650, domain.ChartTypeLine)
	require.NoError(t, err)
	assert.NotNil(t, fragment)
}

func TestBuilder_RendererError(t *testing.T) {
	r := &fakeRenderer{err: errors.New("render failed")}
	_, err := newTestBuilder(r).Build([]domain.Ticket{started(domain.TicketPriorityLow, time.Hour)}, 7, domain.ChartTypeLine)
	assert.Error(t, err)
}

func TestBuilder_LocationDecidesCalendarDate(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on May 10 is still May 9 at UTC-3
	tickets := []domain.Ticket{started(domain.TicketPriorityLow, 11*time.Hour)}

	spec, err := newTestBuilder(&fakeRenderer{}, WithLocation(loc)).Spec(tickets, 7, domain.ChartTypeLine)
	require.NoError(t, err)

	require.Len(t, spec.Dates, 1)
	assert.Equal(t, 9, spec.Dates[0].Day())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, PortugueseLabels, LabelsFor("pt-BR"))
	assert.Equal(t, PortugueseLabels, LabelsFor("pt_br"))
	assert.Equal(t, EnglishLabels, LabelsFor("de"))
	assert.Equal(t, "Últimos 30 dias", PortugueseLabels.XAxis(30))
	assert.Equal(t, "Ontem", PortugueseLabels.XAxis(1))
}
