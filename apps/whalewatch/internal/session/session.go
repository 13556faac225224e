// Package session holds the live counters, the whale feed and the chart markers
// of the current monitoring session.
package session

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"whalewatch/apps/whalewatch/internal/model"
	"whalewatch/apps/whalewatch/internal/units"
)

// Namer resolves an address to its display alias
type Namer interface {
	Get(address string) (string, bool)
}

// Stats is a snapshot of the session counters
type Stats struct {
	CurrentBlock uint64 `json:"current_block"`
	WhalesCount  uint64 `json:"whales_count"`
	TotalWei     string `json:"total_wei"`
	TotalETH     string `json:"total_eth"`
}

// Session accumulates whales until Reset is called
type Session struct {
	mu           sync.RWMutex
	feedLimit    int
	currentBlock uint64
	whalesCount  uint64
	totalWei     *big.Int
	feed         []model.Whale // newest first
}

// New creates a session keeping at most feedLimit feed entries (0 = unbounded)
func New(feedLimit int) *Session {
	return &Session{
		feedLimit: feedLimit,
		totalWei:  new(big.Int),
	}
}

// SetCurrentBlock records the block being scanned
func (s *Session) SetCurrentBlock(block uint64) {
	s.mu.Lock()
	s.currentBlock = block
	s.mu.Unlock()
}

// HandleWhale prepends the whale to the feed and updates counters
func (s *Session) HandleWhale(_ context.Context, whale model.Whale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.whalesCount++
	if whale.ValueWei != nil {
		s.totalWei.Add(s.totalWei, whale.ValueWei)
	}

	s.feed = append([]model.Whale{whale}, s.feed...)
	if s.feedLimit > 0 && len(s.feed) > s.feedLimit {
		s.feed = s.feed[:s.feedLimit]
	}
	return nil
}

// Stats returns the current counters
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		CurrentBlock: s.currentBlock,
		WhalesCount:  s.whalesCount,
		TotalWei:     s.totalWei.String(),
		TotalETH:     units.FormatEther(s.totalWei),
	}
}

// Feed returns up to limit entries, newest first (limit <= 0 returns all)
func (s *Session) Feed(limit int) []model.Whale {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.feed)
	if limit > 0 && limit < n {
		n = limit
	}
	feed := make([]model.Whale, n)
	copy(feed, s.feed[:n])
	return feed
}

// Reset clears the feed and zeroes the match counters
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed = nil
	s.whalesCount = 0
	s.totalWei = new(big.Int)
}

// Markers collects chart annotations for whales
type Markers struct {
	mu      sync.RWMutex
	namer   Namer
	symbol  string
	limit   int
	now     func() time.Time
	markers []model.Marker
}

// NewMarkers creates a marker list keeping at most limit entries (0 = unbounded).
// symbol is the native currency shown in the marker text.
func NewMarkers(namer Namer, symbol string, limit int) *Markers {
	return &Markers{
		namer:  namer,
		symbol: symbol,
		limit:  limit,
		now:    time.Now,
	}
}

// HandleWhale appends a marker labelled with the sender alias
func (m *Markers) HandleWhale(_ context.Context, whale model.Whale) error {
	label := "Whale"
	if m.namer != nil {
		if alias, ok := m.namer.Get(whale.From); ok {
			label = alias
		}
	}

	marker := model.Marker{
		Time:     m.now().Unix(),
		Position: "aboveBar",
		Color:    "#3b82f6",
		Shape:    "circle",
		Text:     fmt.Sprintf("%.0f %s (%s)", math.Round(units.ToFloat(whale.ValueWei)), m.symbol, label),
		Size:     2,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.markers = append(m.markers, marker)
	if m.limit > 0 && len(m.markers) > m.limit {
		m.markers = m.markers[len(m.markers)-m.limit:]
	}
	return nil
}

// All returns a copy of the markers, oldest first
func (m *Markers) All() []model.Marker {
	m.mu.RLock()
	defer m.mu.RUnlock()

	markers := make([]model.Marker, len(m.markers))
	copy(markers, m.markers)
	return markers
}
