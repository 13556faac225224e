package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/chains"
	"whalewatch/apps/whalewatch/internal/monitor"
	"whalewatch/apps/whalewatch/internal/session"
	"whalewatch/apps/whalewatch/internal/settings"
	"whalewatch/apps/whalewatch/internal/units"
)

// APIKeySetter is implemented by gateways that authenticate with an API key
type APIKeySetter interface {
	SetAPIKey(apiKey string)
}

// MonitorHandler starts and stops the poll loop
type MonitorHandler struct {
	monitor       *monitor.Monitor
	settings      *settings.Service
	session       *session.Session
	keySetter     APIKeySetter
	requireAPIKey bool
	chain         *chains.Chain
	logger        *zap.Logger
}

// NewMonitorHandler creates a new MonitorHandler
func NewMonitorHandler(deps Dependencies, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitor:       deps.Monitor,
		settings:      deps.Settings,
		session:       deps.Session,
		keySetter:     deps.KeySetter,
		requireAPIKey: deps.RequireAPIKey,
		chain:         deps.Chain,
		logger:        logger,
	}
}

// GetStatus handles GET /api/status. While running, threshold and interval
// are the ones the loop was started with, not later settings edits.
func (h *MonitorHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	stats := h.session.Stats()
	current := h.settings.Current()

	threshold, interval := current.Threshold, current.Interval
	params, running := h.monitor.Params()
	if running {
		threshold = units.ConvertToDecimalAmount(params.ThresholdWei, h.chain.Decimals)
		interval = int(params.Interval / time.Second)
	}

	writeJSONResponse(w, h.logger, http.StatusOK, StatusResponse{
		Running:      running,
		ChainID:      h.chain.ID,
		Symbol:       h.chain.Symbol,
		CurrentBlock: stats.CurrentBlock,
		WhalesCount:  stats.WhalesCount,
		TotalETH:     stats.TotalETH,
		TotalWei:     stats.TotalWei,
		Threshold:    threshold,
		Interval:     interval,
	})
}

// Start handles POST /api/monitor/start. The body may carry settings to apply first.
func (h *MonitorHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.monitor.Running() {
		writeErrorResponse(w, h.logger, http.StatusConflict, "already_running", "Monitoring is already running")
		return
	}

	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	next := applySettingsRequest(h.settings.Current(), req).Normalize()

	if err := settings.Validate(next, h.requireAPIKey); err != nil {
		if errors.Is(err, settings.ErrMissingAPIKey) {
			writeErrorResponse(w, h.logger, http.StatusBadRequest, "missing_api_key", "Please enter an API key")
			return
		}
		writeErrorResponse(w, h.logger, http.StatusBadRequest, "invalid_settings", err.Error())
		return
	}

	saved, err := h.settings.Save(next)
	if err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, "database_error", "Failed to save settings")
		return
	}

	if h.keySetter != nil {
		h.keySetter.SetAPIKey(saved.APIKey)
	}

	// Reset to catch the next block
	h.session.SetCurrentBlock(0)

	err = h.monitor.Start(monitor.Params{
		ThresholdWei: saved.ThresholdWei(),
		Interval:     time.Duration(saved.Interval) * time.Second,
	})
	if err != nil {
		if errors.Is(err, monitor.ErrAlreadyRunning) {
			writeErrorResponse(w, h.logger, http.StatusConflict, "already_running", "Monitoring is already running")
			return
		}
		h.logger.Error("Failed to start monitor", zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, "start_failed", "Failed to start monitoring")
		return
	}

	h.GetStatus(w, r)
}

// Stop handles POST /api/monitor/stop
func (h *MonitorHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.Stop(); err != nil {
		if errors.Is(err, monitor.ErrNotRunning) {
			writeErrorResponse(w, h.logger, http.StatusConflict, "not_running", "Monitoring is not running")
			return
		}
		h.logger.Error("Failed to stop monitor", zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, "stop_failed", "Failed to stop monitoring")
		return
	}

	h.GetStatus(w, r)
}

func applySettingsRequest(current settings.Settings, req SettingsRequest) settings.Settings {
	if req.APIKey != nil {
		current.APIKey = *req.APIKey
	}
	if req.Threshold != nil {
		current.Threshold = *req.Threshold
	}
	if req.Interval != nil {
		current.Interval = *req.Interval
	}
	if req.ChartVisible != nil {
		current.ChartVisible = *req.ChartVisible
	}
	if req.Timeframe != nil {
		current.Timeframe = *req.Timeframe
	}
	return current
}
