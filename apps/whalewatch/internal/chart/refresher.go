package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher keeps the active timeframe warm in the cache
type Refresher struct {
	service   *Service
	timeframe func() (string, bool) // active timeframe and whether the chart is shown
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewRefresher(service *Service, timeframe func() (string, bool), logger *zap.Logger) *Refresher {
	return &Refresher{
		service:   service,
		timeframe: timeframe,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start schedules the refresh job with a cron spec such as "@every 1m".
// Without a candle cache a refresh has nowhere to go, so nothing is scheduled.
func (r *Refresher) Start(spec string) error {
	if r.service.cache == nil {
		r.logger.Info("No candle cache configured, chart refresh disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(spec, r.refresh); err != nil {
		return fmt.Errorf("failed to schedule chart refresh %q: %w", spec, err)
	}
	r.cron.Start()
	r.logger.Info("Scheduled chart refresh", zap.String("spec", spec))
	return nil
}

// Stop waits for a running job to finish
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) refresh() {
	timeframe, visible := r.timeframe()
	if !visible {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	candles, err := r.service.Refresh(ctx, timeframe)
	if err != nil {
		r.logger.Error("Chart data fetch error", zap.String("timeframe", timeframe), zap.Error(err))
		return
	}

	r.logger.Debug("Refreshed chart data", zap.String("timeframe", timeframe), zap.Int("candles", len(candles)))
}
