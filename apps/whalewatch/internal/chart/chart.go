// Package chart serves ETH/USD price history for the whale chart.
package chart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/model"
)

const (
	TimeframeMinute = "minute"
	TimeframeHour   = "hour"
	TimeframeDay    = "day"

	candleLimit = 200
)

var ErrUnknownTimeframe = errors.New("unknown timeframe")

// cacheTTL bounds how stale a cached series may be per timeframe
var cacheTTL = map[string]time.Duration{
	TimeframeMinute: 30 * time.Second,
	TimeframeHour:   5 * time.Minute,
	TimeframeDay:    30 * time.Minute,
}

// ValidTimeframe reports whether tf is minute, hour or day
func ValidTimeframe(tf string) bool {
	_, ok := cacheTTL[tf]
	return ok
}

// Cache stores candle series by timeframe
type Cache interface {
	Get(ctx context.Context, timeframe string) ([]model.Candle, bool, error)
	Set(ctx context.Context, timeframe string, candles []model.Candle, ttl time.Duration) error
}

type histoResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []histoBar `json:"Data"`
	} `json:"Data"`
}

type histoBar struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type Service struct {
	restyClient *resty.Client
	baseURL     string
	cache       Cache
	logger      *zap.Logger
}

// NewService creates a price service. cache may be nil.
func NewService(baseURL string, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		restyClient: resty.New().SetTimeout(10 * time.Second),
		baseURL:     baseURL,
		cache:       cache,
		logger:      logger,
	}
}

// Candles returns the latest bars for timeframe, from cache when fresh
func (s *Service) Candles(ctx context.Context, timeframe string) ([]model.Candle, error) {
	if !ValidTimeframe(timeframe) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimeframe, timeframe)
	}

	if s.cache != nil {
		candles, ok, err := s.cache.Get(ctx, timeframe)
		if err != nil {
			s.logger.Warn("Candle cache read failed", zap.String("timeframe", timeframe), zap.Error(err))
		} else if ok {
			return candles, nil
		}
	}

	return s.Refresh(ctx, timeframe)
}

// Refresh fetches bars from the price API and overwrites the cache
func (s *Service) Refresh(ctx context.Context, timeframe string) ([]model.Candle, error) {
	if !ValidTimeframe(timeframe) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimeframe, timeframe)
	}

	candles, err := s.fetch(ctx, timeframe)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, timeframe, candles, cacheTTL[timeframe]); err != nil {
			s.logger.Warn("Candle cache write failed", zap.String("timeframe", timeframe), zap.Error(err))
		}
	}

	return candles, nil
}

func (s *Service) fetch(ctx context.Context, timeframe string) ([]model.Candle, error) {
	var result histoResponse

	resp, err := s.restyClient.R().
		SetContext(ctx).
		SetQueryParam("fsym", "ETH").
		SetQueryParam("tsym", "USD").
		SetQueryParam("limit", fmt.Sprintf("%d", candleLimit)).
		ForceContentType("application/json").
		SetResult(&result).
		Get(fmt.Sprintf("%s/histo%s", s.baseURL, timeframe))
	if err != nil {
		return nil, fmt.Errorf("price history request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("price history: http %d: %s", resp.StatusCode(), resp.String())
	}

	if result.Response == "Error" {
		return nil, fmt.Errorf("price history: %s", result.Message)
	}

	candles := make([]model.Candle, 0, len(result.Data.Data))
	for _, bar := range result.Data.Data {
		candles = append(candles, model.Candle{
			Time:  bar.Time,
			Open:  bar.Open,
			High:  bar.High,
			Low:   bar.Low,
			Close: bar.Close,
		})
	}

	return candles, nil
}
