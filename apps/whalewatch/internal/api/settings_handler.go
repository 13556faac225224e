package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/settings"
)

// SettingsHandler reads and updates persisted settings
type SettingsHandler struct {
	settings *settings.Service
	logger   *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *settings.Service, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, h.logger, http.StatusOK, toSettingsResponse(h.settings.Current()))
}

// UpdateSettings handles PUT /api/settings. Changes apply to the next monitoring run.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, h.logger, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	saved, err := h.settings.Save(applySettingsRequest(h.settings.Current(), req))
	if err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		writeErrorResponse(w, h.logger, http.StatusInternalServerError, "database_error", "Failed to save settings")
		return
	}

	writeJSONResponse(w, h.logger, http.StatusOK, toSettingsResponse(saved))
}

func toSettingsResponse(s settings.Settings) SettingsResponse {
	return SettingsResponse{
		APIKey:       maskValue(s.APIKey),
		APIKeySet:    s.APIKey != "",
		Threshold:    s.Threshold,
		Interval:     s.Interval,
		ChartVisible: s.ChartVisible,
		Timeframe:    s.Timeframe,
	}
}

func maskValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 3 {
		return strings.Repeat("*", 7)
	}
	return value[:3] + strings.Repeat("*", 7)
}
