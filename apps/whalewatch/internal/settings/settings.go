// Package settings keeps the user-editable monitor settings and persists them
// as key/value pairs.
package settings

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/units"
)

const (
	KeyAPIKey       = "eth_whale_api_key"
	KeyThreshold    = "eth_whale_threshold"
	KeyInterval     = "eth_whale_interval"
	KeyChartVisible = "eth_whale_chart_visible"
	KeyTimeframe    = "eth_whale_timeframe"

	DefaultThreshold = "100"
	DefaultInterval  = 10
	DefaultTimeframe = "hour"

	// MaxInterval is one day, in seconds
	MaxInterval = 24 * 60 * 60
)

var ErrMissingAPIKey = errors.New("api key is required")

// Store persists settings as key/value pairs
type Store interface {
	GetAll() (map[string]string, error)
	SetMany(values map[string]string) error
}

// Settings is a snapshot of the user configuration
type Settings struct {
	APIKey       string `json:"api_key"`
	Threshold    string `json:"threshold"`
	Interval     int    `json:"interval"`
	ChartVisible bool   `json:"chart_visible"`
	Timeframe    string `json:"timeframe"`
}

// ThresholdWei returns the threshold in wei
func (s Settings) ThresholdWei() *big.Int {
	wei, err := units.ParseEther(s.Threshold)
	if err != nil {
		wei, _ = units.ParseEther(DefaultThreshold)
	}
	return wei
}

// Normalize applies the same fallbacks a blank or invalid form field gets
func (s Settings) Normalize() Settings {
	s.APIKey = strings.TrimSpace(s.APIKey)

	s.Threshold = strings.TrimSpace(s.Threshold)
	if wei, err := units.ParseEther(s.Threshold); err != nil || wei.Sign() == 0 {
		s.Threshold = DefaultThreshold
	}

	if s.Interval <= 0 || s.Interval > MaxInterval {
		s.Interval = DefaultInterval
	}

	switch s.Timeframe {
	case "minute", "hour", "day":
	default:
		s.Timeframe = DefaultTimeframe
	}

	return s
}

// Service is the in-memory view of the persisted settings
type Service struct {
	store   Store
	logger  *zap.Logger
	mu      sync.RWMutex
	current Settings
}

// NewService creates a settings service seeded with environment defaults
func NewService(store Store, defaults Settings, logger *zap.Logger) *Service {
	defaults.ChartVisible = true
	return &Service{
		store:   store,
		logger:  logger,
		current: defaults.Normalize(),
	}
}

// Load merges persisted values over the defaults
func (s *Service) Load() error {
	values, err := s.store.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.current
	if v, ok := values[KeyAPIKey]; ok && v != "" {
		merged.APIKey = v
	}
	if v, ok := values[KeyThreshold]; ok {
		merged.Threshold = v
	}
	if v, ok := values[KeyInterval]; ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			merged.Interval = parsed
		}
	}
	if v, ok := values[KeyChartVisible]; ok {
		merged.ChartVisible = v != "false"
	}
	if v, ok := values[KeyTimeframe]; ok {
		merged.Timeframe = v
	}

	s.current = merged.Normalize()

	s.logger.Info("Loaded settings",
		zap.String("threshold", s.current.Threshold),
		zap.Int("interval", s.current.Interval),
		zap.Bool("api_key_set", s.current.APIKey != ""),
		zap.Bool("chart_visible", s.current.ChartVisible),
		zap.String("timeframe", s.current.Timeframe))
	return nil
}

// Current returns the active settings
func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save normalizes and persists new settings
func (s *Service) Save(next Settings) (Settings, error) {
	next = next.Normalize()

	if err := s.store.SetMany(map[string]string{
		KeyAPIKey:       next.APIKey,
		KeyThreshold:    next.Threshold,
		KeyInterval:     strconv.Itoa(next.Interval),
		KeyChartVisible: strconv.FormatBool(next.ChartVisible),
		KeyTimeframe:    next.Timeframe,
	}); err != nil {
		return Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	return next, nil
}

// Validate checks the settings required to start monitoring
func Validate(s Settings, requireAPIKey bool) error {
	if requireAPIKey && strings.TrimSpace(s.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
