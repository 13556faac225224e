package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/aliases"
	"whalewatch/apps/whalewatch/internal/chains"
	"whalewatch/apps/whalewatch/internal/chart"
	"whalewatch/apps/whalewatch/internal/monitor"
	"whalewatch/apps/whalewatch/internal/session"
	"whalewatch/apps/whalewatch/internal/settings"
)

// Dependencies are the services exposed over HTTP
type Dependencies struct {
	Monitor       *monitor.Monitor
	Settings      *settings.Service
	Session       *session.Session
	Markers       *session.Markers
	Aliases       *aliases.Service
	Chart         *chart.Service
	KeySetter     APIKeySetter // nil when the gateway needs no key
	RequireAPIKey bool
	Chain         *chains.Chain
}

// Server represents the API server
type Server struct {
	monitorHandler  *MonitorHandler
	feedHandler     *FeedHandler
	settingsHandler *SettingsHandler
	aliasHandler    *AliasHandler
	chartHandler    *ChartHandler
	logger          *zap.Logger
	server          *http.Server
}

// NewServer creates a new API server
func NewServer(port int, deps Dependencies, logger *zap.Logger) *Server {
	return &Server{
		monitorHandler:  NewMonitorHandler(deps, logger),
		feedHandler:     NewFeedHandler(deps.Session, deps.Aliases, deps.Chain, logger),
		settingsHandler: NewSettingsHandler(deps.Settings, logger),
		aliasHandler:    NewAliasHandler(deps.Aliases, logger),
		chartHandler:    NewChartHandler(deps.Chart, deps.Markers, deps.Settings, logger),
		logger:          logger,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start starts the API server
func (s *Server) Start() error {
	s.server.Handler = s.Router()

	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	return nil
}

// Stop stops the API server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}

// Router configures the API routes
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.Use(s.loggingMiddleware)
	router.Use(s.corsMiddleware)

	api := router.PathPrefix("/api").Subrouter()

	// Monitor endpoints
	api.HandleFunc("/status", s.monitorHandler.GetStatus).Methods("GET")
	api.HandleFunc("/monitor/start", s.monitorHandler.Start).Methods("POST")
	api.HandleFunc("/monitor/stop", s.monitorHandler.Stop).Methods("POST")

	// Feed endpoints
	api.HandleFunc("/feed", s.feedHandler.GetFeed).Methods("GET")
	api.HandleFunc("/feed", s.feedHandler.ClearFeed).Methods("DELETE")

	// Settings endpoints
	api.HandleFunc("/settings", s.settingsHandler.GetSettings).Methods("GET")
	api.HandleFunc("/settings", s.settingsHandler.UpdateSettings).Methods("PUT")

	// Alias endpoints
	api.HandleFunc("/aliases", s.aliasHandler.ListAliases).Methods("GET")
	api.HandleFunc("/aliases/{address}", s.aliasHandler.SetAlias).Methods("PUT")
	api.HandleFunc("/aliases/{address}", s.aliasHandler.DeleteAlias).Methods("DELETE")

	// Chart endpoints
	api.HandleFunc("/chart/candles", s.chartHandler.GetCandles).Methods("GET")
	api.HandleFunc("/chart/markers", s.chartHandler.GetMarkers).Methods("GET")

	// Health check endpoint
	api.HandleFunc("/health", s.healthCheck).Methods("GET")

	return router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// corsMiddleware handles CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	writeJSONResponse(w, s.logger, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response with the specified status code
func writeJSONResponse(w http.ResponseWriter, logger *zap.Logger, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(w http.ResponseWriter, logger *zap.Logger, statusCode int, errorCode, message string) {
	writeJSONResponse(w, logger, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
