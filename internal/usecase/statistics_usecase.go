package usecase

import (
	"context"
	"time"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/logger"
)

// SnapshotSource returns the current upstream dataset
type SnapshotSource interface {
	Get(ctx context.Context) (*domain.Snapshot, error)
}

// Analyzer computes the aggregate report from decoded tickets
type Analyzer interface {
	Analyze(ctx context.Context, tickets []domain.Ticket, windowDays int, chartType domain.ChartType) (*domain.Analysis, error)
}

// StatisticsUseCase handles the statistics endpoints
type StatisticsUseCase struct {
	source   SnapshotSource
	analyzer Analyzer
	location *time.Location
	logger   logger.Logger
}

// NewStatisticsUseCase creates a new statistics use case
func NewStatisticsUseCase(source SnapshotSource, analyzer Analyzer, loc *time.Location, log logger.Logger) *StatisticsUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &StatisticsUseCase{
		source:   source,
		analyzer: analyzer,
		location: loc,
		logger:   log,
	}
}

// BasicAnalysis computes the report over the last days, drawing the chart as chartType
func (uc *StatisticsUseCase) BasicAnalysis(ctx context.Context, days int, chartType domain.ChartType) (*domain.Analysis, error) {
	if days < 0 {
		return nil, domain.ErrInvalidWindow
	}

	start := time.Now()

	snapshot, err := uc.source.Get(ctx)
	if err != nil {
		return nil, err
	}

	tickets, err := snapshot.Tickets(uc.location)
	if err != nil {
		uc.logger.Error(ctx, "upstream returned malformed ticket data", err, map[string]interface{}{
			"fetched_at": snapshot.FetchedAt,
		})
		return nil, err
	}

	result, err := uc.analyzer.Analyze(ctx, tickets, days, chartType)
	if err != nil {
		return nil, err
	}

	logger.LogPerformance(ctx, uc.logger, "basic_analysis", time.Since(start), map[string]interface{}{
		"days":       days,
		"chart_type": string(chartType),
		"tickets":    len(tickets),
		"has_chart":  result.Chart != nil,
	})

	return result, nil
}

// RawData returns the upstream payload exactly as fetched
func (uc *StatisticsUseCase) RawData(ctx context.Context) ([]byte, error) {
	snapshot, err := uc.source.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Raw, nil
}
