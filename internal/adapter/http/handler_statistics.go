package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/logger"
	apperror "github.com/ticketstats/ticketstats/pkg/error"
)

// StatisticsUseCase defines the behavior the handler depends on
type StatisticsUseCase interface {
	BasicAnalysis(ctx context.Context, days int, chartType domain.ChartType) (*domain.Analysis, error)
	RawData(ctx context.Context) ([]byte, error)
}

// StatisticsHandler handles HTTP requests for ticket statistics
type StatisticsHandler struct {
	statistics StatisticsUseCase
	logger     logger.Logger
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(statistics StatisticsUseCase, log logger.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		statistics: statistics,
		logger:     log,
	}
}

// RegisterRoutes registers statistics routes
func (h *StatisticsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/basic-analysis/{days}", h.BasicAnalysis).Methods("GET")
	router.HandleFunc("/basic-analysis/{days}/{chart}", h.BasicAnalysis).Methods("GET")
	router.HandleFunc("/raw-data", h.RawData).Methods("GET")
}

// BasicAnalysis handles GET /basic-analysis/{days}[/{chart}]. The chart type may
// also be given as ?chart=; unknown types draw a line chart.
func (h *StatisticsHandler) BasicAnalysis(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	days, err := strconv.Atoi(vars["days"])
	if err != nil || days < 0 {
		writeError(w, apperror.NewBadRequest("days must be a non-negative integer"))
		return
	}

	chartParam, ok := vars["chart"]
	if !ok {
		chartParam = r.URL.Query().Get("chart")
	}

	result, err := h.statistics.BasicAnalysis(r.Context(), days, domain.ParseChartType(chartParam))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RawData handles GET /raw-data, returning the upstream payload verbatim
func (h *StatisticsHandler) RawData(w http.ResponseWriter, r *http.Request) {
	raw, err := h.statistics.RawData(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *StatisticsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.MapError(err)
	h.logger.Error(r.Context(), "request failed", err, map[string]interface{}{
		"path":   r.URL.Path,
		"code":   appErr.Code,
		"status": appErr.Status,
	})
	writeError(w, appErr)
}
