package api

import (
	"net/http"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/chart"
	"whalewatch/apps/whalewatch/internal/model"
	"whalewatch/apps/whalewatch/internal/session"
	"whalewatch/apps/whalewatch/internal/settings"
)

// ChartHandler serves price candles and whale markers
type ChartHandler struct {
	chart    *chart.Service
	markers  *session.Markers
	settings *settings.Service
	logger   *zap.Logger
}

// NewChartHandler creates a new ChartHandler
func NewChartHandler(chartService *chart.Service, markers *session.Markers, settings *settings.Service, logger *zap.Logger) *ChartHandler {
	return &ChartHandler{
		chart:    chartService,
		markers:  markers,
		settings: settings,
		logger:   logger,
	}
}

// GetCandles handles GET /api/chart/candles?timeframe=minute|hour|day
func (h *ChartHandler) GetCandles(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = h.settings.Current().Timeframe
	}

	if !chart.ValidTimeframe(timeframe) {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, "invalid_timeframe", "Timeframe must be one of minute, hour, day")
		return
	}

	candles, err := h.chart.Candles(r.Context(), timeframe)
	if err != nil {
		// Upstream failures yield an empty series
		h.logger.Error("Chart data fetch error", zap.String("timeframe", timeframe), zap.Error(err))
		candles = []model.Candle{}
	}

	writeJSONResponse(w, h.logger, http.StatusOK, CandlesResponse{
		Timeframe: timeframe,
		Candles:   candles,
	})
}

// GetMarkers handles GET /api/chart/markers
func (h *ChartHandler) GetMarkers(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, h.logger, http.StatusOK, MarkersResponse{Markers: h.markers.All()})
}
