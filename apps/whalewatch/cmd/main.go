package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/aliases"
	"whalewatch/apps/whalewatch/internal/api"
	"whalewatch/apps/whalewatch/internal/chains"
	"whalewatch/apps/whalewatch/internal/chart"
	"whalewatch/apps/whalewatch/internal/config"
	"whalewatch/apps/whalewatch/internal/event_publisher"
	"whalewatch/apps/whalewatch/internal/gateway"
	"whalewatch/apps/whalewatch/internal/monitor"
	"whalewatch/apps/whalewatch/internal/repository"
	"whalewatch/apps/whalewatch/internal/session"
	"whalewatch/apps/whalewatch/internal/settings"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg := config.NewConfig()

	logger.Info("Starting application with configuration",
		zap.String("gateway", cfg.Gateway),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("threshold_eth", cfg.ThresholdETH),
		zap.Int("poll_interval", cfg.PollInterval),
		zap.Bool("kafka_enabled", cfg.KafkaEnabled()),
		zap.Bool("redis_enabled", cfg.RedisURL != ""),
		zap.Int("api_port", cfg.APIPort),
	)

	chain, ok := chains.GlobalRegistry.GetByID(cfg.ChainID)
	if !ok {
		logger.Warn("Unknown chain id, using mainnet explorer links", zap.Uint64("chain_id", cfg.ChainID))
		chain = chains.Mainnet
	}
	logger.Info("Watching chain", zap.String("name", chain.Name), zap.String("symbol", chain.Symbol))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := sql.Open("postgres", cfg.DbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.InitMigration(db); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	settingsRepository := repository.NewSettingsRepository(db, logger)
	aliasRepository := repository.NewAliasRepository(db, logger)
	outboxRepository := repository.NewOutboxRepository(db, logger)

	settingsService := settings.NewService(settingsRepository, settings.Settings{
		APIKey:    cfg.EtherscanAPIKey,
		Threshold: cfg.ThresholdETH,
		Interval:  cfg.PollInterval,
	}, logger)
	if err := settingsService.Load(); err != nil {
		logger.Fatal("Failed to load settings", zap.Error(err))
	}

	aliasService := aliases.NewService(aliasRepository, logger)
	if err := aliasService.Load(); err != nil {
		logger.Fatal("Failed to load aliases", zap.Error(err))
	}

	// Chain gateway
	var (
		gw        gateway.Gateway
		keySetter api.APIKeySetter
	)
	switch cfg.Gateway {
	case config.GatewayRPC:
		rpcGateway, err := gateway.NewRPCGateway(ctx, cfg.RpcURL, logger)
		if err != nil {
			logger.Fatal("Failed to create RPC gateway", zap.Error(err))
		}
		gw = rpcGateway
	default:
		etherscanGateway := gateway.NewEtherscanGateway(cfg.EtherscanBaseURL, cfg.ChainID, settingsService.Current().APIKey, logger)
		gw = etherscanGateway
		keySetter = etherscanGateway
	}
	defer gw.Close()

	// Session state and whale handlers
	sess := session.New(cfg.FeedLimit)
	markers := session.NewMarkers(aliasService, chain.Symbol, cfg.FeedLimit)
	handlers := []monitor.WhaleHandler{sess, markers}

	if cfg.KafkaEnabled() {
		eventPublisher, err := event_publisher.NewEventPublisher(cfg.KafkaBroker, cfg.KafkaTopic, logger, outboxRepository)
		if err != nil {
			logger.Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer eventPublisher.Close()

		go eventPublisher.StartPublishing(ctx)
		handlers = append(handlers, event_publisher.NewOutboxRecorder(outboxRepository, chain.ID))
	}

	whaleMonitor := monitor.NewMonitor(gw, chain, sess, logger, handlers...)

	// Price chart
	var candleCache chart.Cache
	if cfg.RedisURL != "" {
		redisCache, err := chart.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		candleCache = redisCache
	}

	chartService := chart.NewService(cfg.PriceBaseURL, candleCache, logger)
	refresher := chart.NewRefresher(chartService, func() (string, bool) {
		current := settingsService.Current()
		return current.Timeframe, current.ChartVisible
	}, logger)
	if err := refresher.Start("@every 1m"); err != nil {
		logger.Fatal("Failed to start chart refresher", zap.Error(err))
	}
	defer refresher.Stop()

	// Create and start API server
	apiServer := api.NewServer(cfg.APIPort, api.Dependencies{
		Monitor:       whaleMonitor,
		Settings:      settingsService,
		Session:       sess,
		Markers:       markers,
		Aliases:       aliasService,
		Chart:         chartService,
		KeySetter:     keySetter,
		RequireAPIKey: cfg.RequiresAPIKey(),
		Chain:         chain,
	}, logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	if cfg.AutoStart {
		current := settingsService.Current()
		if err := settings.Validate(current, cfg.RequiresAPIKey()); err != nil {
			logger.Error("Cannot auto-start monitoring", zap.Error(err))
		} else if err := whaleMonitor.Start(monitor.Params{
			ThresholdWei: current.ThresholdWei(),
			Interval:     time.Duration(current.Interval) * time.Second,
		}); err != nil {
			logger.Error("Failed to auto-start monitoring", zap.Error(err))
		}
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Received shutdown signal, starting graceful shutdown...")

	if err := whaleMonitor.Stop(); err != nil && !errors.Is(err, monitor.ErrNotRunning) {
		logger.Error("Error stopping monitor", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error shutting down API server", zap.Error(err))
	}

	logger.Info("Application shutdown complete")
}
