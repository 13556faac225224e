package monitor

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/chains"
	"whalewatch/apps/whalewatch/internal/gateway"
	"whalewatch/apps/whalewatch/internal/model"
	"whalewatch/apps/whalewatch/internal/units"
)

var (
	ErrAlreadyRunning = errors.New("monitor is already running")
	ErrNotRunning     = errors.New("monitor is not running")
)

// WhaleHandler receives every transaction that meets the threshold
type WhaleHandler interface {
	HandleWhale(ctx context.Context, whale model.Whale) error
}

// BlockTracker is told which block is being scanned
type BlockTracker interface {
	SetCurrentBlock(block uint64)
}

// Params are fixed for the lifetime of one monitoring run
type Params struct {
	ThresholdWei *big.Int
	Interval     time.Duration
}

type Monitor struct {
	gateway  gateway.Gateway
	chain    *chains.Chain
	tracker  BlockTracker
	handlers []WhaleHandler
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
	params  Params
	cancel  context.CancelFunc
	done    chan struct{}
}

// scan is the per-run state, touched only by the loop goroutine
type scan struct {
	params   Params
	lastSeen uint64
}

func NewMonitor(gw gateway.Gateway, chain *chains.Chain, tracker BlockTracker, logger *zap.Logger, handlers ...WhaleHandler) *Monitor {
	return &Monitor{
		gateway:  gw,
		chain:    chain,
		tracker:  tracker,
		handlers: handlers,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins polling. The first cycle runs immediately and only records the
// chain head, so only blocks mined afterwards are scanned.
func (m *Monitor) Start(params Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	if params.Interval <= 0 {
		params.Interval = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.running = true
	m.params = params
	m.cancel = cancel
	m.done = done

	m.logger.Info("Starting whale monitor",
		zap.String("threshold", units.ConvertToDecimalAmount(params.ThresholdWei, m.chain.Decimals)+" "+m.chain.Symbol),
		zap.Duration("interval", params.Interval),
		zap.Uint64("chain_id", m.chain.ID))

	go func() {
		defer close(done)
		m.pollingLoop(ctx, &scan{params: params})
	}()

	return nil
}

// Stop clears the timer and waits for an in-flight cycle to return
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNotRunning
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done

	m.logger.Info("Stopped whale monitor")
	return nil
}

// Running reports whether a polling loop is active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Params returns the parameters of the active run. ok is false when stopped.
func (m *Monitor) Params() (params Params, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return Params{}, false
	}
	return m.params, true
}

func (m *Monitor) pollingLoop(ctx context.Context, s *scan) {
	for {
		m.poll(ctx, s)

		// Re-armed only after the cycle completes, so cycles never overlap
		timer := time.NewTimer(s.params.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (m *Monitor) poll(ctx context.Context, s *scan) {
	latestBlock, err := m.gateway.BlockNumber(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrRateLimited) {
			m.logger.Warn("Gateway rate limited, skipping tick", zap.Error(err))
		} else if ctx.Err() == nil {
			m.logger.Error("Error getting latest block", zap.Error(err))
		}
		return
	}

	if latestBlock <= s.lastSeen {
		return
	}

	if s.lastSeen == 0 {
		s.lastSeen = latestBlock
		m.tracker.SetCurrentBlock(latestBlock)
		m.logger.Info("Starting from block", zap.Uint64("block", latestBlock))
		return
	}

	m.logger.Info("Scanning new blocks",
		zap.Uint64("start", s.lastSeen+1),
		zap.Uint64("end", latestBlock),
		zap.Uint64("count", latestBlock-s.lastSeen))

	for blockNumber := s.lastSeen + 1; blockNumber <= latestBlock; blockNumber++ {
		if ctx.Err() != nil {
			return
		}

		m.tracker.SetCurrentBlock(blockNumber)
		m.processBlock(ctx, blockNumber, s.params.ThresholdWei)
	}

	s.lastSeen = latestBlock
}

func (m *Monitor) processBlock(ctx context.Context, blockNumber uint64, threshold *big.Int) {
	transactions, err := m.gateway.BlockTransactions(ctx, blockNumber)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Error("Error fetching block transactions", zap.Uint64("block", blockNumber), zap.Error(err))
		}
		return
	}

	matched := 0
	for _, tx := range transactions {
		if !units.MeetsThreshold(tx.Value, threshold) {
			continue
		}
		matched++

		whale := model.Whale{
			ID:          uuid.New().String(),
			BlockNumber: blockNumber,
			TxHash:      tx.Hash,
			From:        tx.From,
			To:          tx.To,
			ValueWei:    new(big.Int).Set(tx.Value),
			ValueETH:    units.ConvertToDecimalAmount(tx.Value, m.chain.Decimals),
			ExplorerURL: m.chain.TxURL(tx.Hash),
			DetectedAt:  m.now().UTC(),
		}

		m.logger.Info("Whale transaction detected",
			zap.Uint64("block", blockNumber),
			zap.String("tx_hash", whale.TxHash),
			zap.String("from", whale.From),
			zap.String("to", whale.To),
			zap.String("value", whale.ValueETH+" "+m.chain.Symbol))

		for _, handler := range m.handlers {
			if err := handler.HandleWhale(ctx, whale); err != nil {
				m.logger.Error("Error handling whale", zap.String("tx_hash", whale.TxHash), zap.Error(err))
			}
		}
	}

	m.logger.Debug("Scanned block",
		zap.Uint64("block", blockNumber),
		zap.Int("transactions", len(transactions)),
		zap.Int("whales", matched))
}
