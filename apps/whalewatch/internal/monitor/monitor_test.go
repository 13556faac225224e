package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"whalewatch/apps/whalewatch/internal/chains"
	"whalewatch/apps/whalewatch/internal/gateway"
	"whalewatch/apps/whalewatch/internal/model"
)

type fakeGateway struct {
	mu        sync.Mutex
	head      uint64
	headErr   error
	blocks    map[uint64][]model.Transaction
	blockErrs map[uint64]error
	fetched   []uint64
	headCalls int
}

func newFakeGateway(head uint64) *fakeGateway {
	return &fakeGateway{
		head:      head,
		blocks:    make(map[uint64][]model.Transaction),
		blockErrs: make(map[uint64]error),
	}
}

func (g *fakeGateway) BlockNumber(ctx context.Context) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.headCalls++
	return g.head, g.headErr
}

func (g *fakeGateway) BlockTransactions(ctx context.Context, number uint64) ([]model.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetched = append(g.fetched, number)
	if err := g.blockErrs[number]; err != nil {
		return nil, err
	}
	return g.blocks[number], nil
}

func (g *fakeGateway) Close() error { return nil }

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.headCalls
}

type recorder struct {
	mu     sync.Mutex
	whales []model.Whale
	block  uint64
}

func (r *recorder) HandleWhale(_ context.Context, whale model.Whale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.whales = append(r.whales, whale)
	return nil
}

func (r *recorder) SetCurrentBlock(block uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.block = block
}

type failingHandler struct{}

func (failingHandler) HandleWhale(context.Context, model.Whale) error {
	return errors.New("handler failed")
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func tx(hash string, eth int64) model.Transaction {
	return model.Transaction{Hash: hash, From: "0xfrom", To: "0xto", Value: ether(eth)}
}

func newTestMonitor(t *testing.T, gw *fakeGateway, handlers ...WhaleHandler) (*Monitor, *recorder) {
	t.Helper()
	rec := &recorder{}
	m := NewMonitor(gw, chains.Mainnet, rec, zaptest.NewLogger(t), append([]WhaleHandler{rec}, handlers...)...)
	m.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return m, rec
}

func TestFirstPollOnlyRecordsHead(t *testing.T) {
	gw := newFakeGateway(100)
	gw.blocks[100] = []model.Transaction{tx("0xold", 500)}
	m, rec := newTestMonitor(t, gw)

	s := &scan{params: Params{ThresholdWei: ether(100)}}
	m.poll(context.Background(), s)

	if s.lastSeen != 100 {
		t.Errorf("lastSeen = %d, want 100", s.lastSeen)
	}
	if rec.block != 100 {
		t.Errorf("current block = %d, want 100", rec.block)
	}
	if len(gw.fetched) != 0 {
		t.Errorf("no block should be fetched on the first poll, fetched %v", gw.fetched)
	}
}

func TestPollScansEachNewBlockOnce(t *testing.T) {
	gw := newFakeGateway(103)
	gw.blocks[101] = []model.Transaction{tx("0xsmall", 99), tx("0xexact", 100)}
	gw.blocks[103] = []model.Transaction{tx("0xbig", 2500)}
	m, rec := newTestMonitor(t, gw)

	s := &scan{params: Params{ThresholdWei: ether(100)}, lastSeen: 100}
	m.poll(context.Background(), s)
	// No new blocks: nothing fetched again
	m.poll(context.Background(), s)

	if fmt.Sprint(gw.fetched) != "[101 102 103]" {
		t.Errorf("fetched = %v", gw.fetched)
	}
	if s.lastSeen != 103 || rec.block != 103 {
		t.Errorf("lastSeen = %d, current block = %d", s.lastSeen, rec.block)
	}

	if len(rec.whales) != 2 {
		t.Fatalf("expected 2 whales, got %d", len(rec.whales))
	}

	exact := rec.whales[0]
	if exact.TxHash != "0xexact" || exact.BlockNumber != 101 || exact.ValueETH != "100" {
		t.Errorf("unexpected whale: %+v", exact)
	}
	if exact.ExplorerURL != "https://etherscan.io/tx/0xexact" {
		t.Errorf("ExplorerURL = %s", exact.ExplorerURL)
	}
	if exact.ID == "" || exact.DetectedAt.IsZero() {
		t.Errorf("whale missing id or timestamp: %+v", exact)
	}
	if rec.whales[1].TxHash != "0xbig" {
		t.Errorf("unexpected second whale: %+v", rec.whales[1])
	}
}

func TestPollSkipsFailedBlock(t *testing.T) {
	gw := newFakeGateway(102)
	gw.blockErrs[101] = gateway.ErrBlockNotFound
	gw.blocks[102] = []model.Transaction{tx("0xwhale", 300)}
	m, rec := newTestMonitor(t, gw)

	s := &scan{params: Params{ThresholdWei: ether(100)}, lastSeen: 100}
	m.poll(context.Background(), s)

	if s.lastSeen != 102 {
		t.Errorf("lastSeen = %d, want 102", s.lastSeen)
	}
	if len(rec.whales) != 1 || rec.whales[0].TxHash != "0xwhale" {
		t.Errorf("unexpected whales: %+v", rec.whales)
	}
}

func TestPollHeadErrorKeepsPosition(t *testing.T) {
	for _, headErr := range []error{gateway.ErrRateLimited, errors.New("connection reset")} {
		gw := newFakeGateway(200)
		gw.headErr = headErr
		m, _ := newTestMonitor(t, gw)

		s := &scan{params: Params{ThresholdWei: ether(100)}, lastSeen: 150}
		m.poll(context.Background(), s)

		if s.lastSeen != 150 {
			t.Errorf("%v: lastSeen moved to %d", headErr, s.lastSeen)
		}
		if len(gw.fetched) != 0 {
			t.Errorf("%v: blocks fetched %v", headErr, gw.fetched)
		}
	}
}

func TestStartDefaultsInterval(t *testing.T) {
	m, _ := newTestMonitor(t, newFakeGateway(10))

	if err := m.Start(Params{ThresholdWei: ether(100)}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	active, _ := m.Params()
	if active.Interval != 10*time.Second {
		t.Errorf("Interval = %s, want 10s", active.Interval)
	}
}

func TestHandlerErrorDoesNotStopFanOut(t *testing.T) {
	gw := newFakeGateway(101)
	gw.blocks[101] = []model.Transaction{tx("0x1", 100), tx("0x2", 100)}

	rec := &recorder{}
	m := NewMonitor(gw, chains.Mainnet, rec, zaptest.NewLogger(t), failingHandler{}, rec)

	s := &scan{params: Params{ThresholdWei: ether(100)}, lastSeen: 100}
	m.poll(context.Background(), s)

	if len(rec.whales) != 2 {
		t.Errorf("expected both whales after a failing handler, got %d", len(rec.whales))
	}
}

func TestStartStop(t *testing.T) {
	gw := newFakeGateway(10)
	m, rec := newTestMonitor(t, gw)

	if err := m.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}

	params := Params{ThresholdWei: ether(100), Interval: 10 * time.Millisecond}
	if err := m.Start(params); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Start(params); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
	if !m.Running() {
		t.Error("monitor should be running")
	}
	active, ok := m.Params()
	if !ok || active.Interval != 10*time.Millisecond || active.ThresholdWei.Cmp(ether(100)) != 0 {
		t.Errorf("unexpected active params: %+v (ok=%v)", active, ok)
	}

	deadline := time.Now().Add(2 * time.Second)
	for gw.calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if gw.calls() < 2 {
		t.Fatalf("expected repeated polling, got %d calls", gw.calls())
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if m.Running() {
		t.Error("monitor should be stopped")
	}
	if _, ok := m.Params(); ok {
		t.Error("no params should be reported after Stop")
	}

	calls := gw.calls()
	time.Sleep(50 * time.Millisecond)
	if gw.calls() != calls {
		t.Error("polling continued after Stop")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.block != 10 {
		t.Errorf("current block = %d, want 10", rec.block)
	}
}
