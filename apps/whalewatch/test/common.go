package test

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Address used for alias round trips (Binance 14 hot wallet)
	TestWhaleAddress = "0x28C6c06298d514Db089934071355E5743bf21d60"

	// Ethereum mainnet configuration
	EthereumChainID = 1
)

func init() {
	loadEnvConfig()
}

// loadEnvConfig loads environment variables from .env file if it exists
func loadEnvConfig() {
	if err := godotenv.Load(".env"); err == nil {
		log.Printf("Loaded environment variables from .env")
	}
}

// baseURL returns the address of a running whalewatch instance or skips the test
func baseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("WHALEWATCH_BASE_URL")
	if url == "" {
		t.Skip("WHALEWATCH_BASE_URL not set, skipping integration test")
	}
	return url
}

// StatusResponse represents the monitor state and session counters
type StatusResponse struct {
	Running      bool   `json:"running"`
	ChainID      uint64 `json:"chain_id"`
	Symbol       string `json:"symbol"`
	CurrentBlock uint64 `json:"current_block"`
	WhalesCount  uint64 `json:"whales_count"`
	TotalETH     string `json:"total_eth"`
	TotalWei     string `json:"total_wei"`
	Threshold    string `json:"threshold"`
	Interval     int    `json:"interval"`
}

// SettingsRequest represents a partial settings update
type SettingsRequest struct {
	APIKey       *string `json:"api_key,omitempty"`
	Threshold    *string `json:"threshold,omitempty"`
	Interval     *int    `json:"interval,omitempty"`
	ChartVisible *bool   `json:"chart_visible,omitempty"`
	Timeframe    *string `json:"timeframe,omitempty"`
}

// SettingsResponse represents the stored settings with the API key masked
type SettingsResponse struct {
	APIKey       string `json:"api_key"`
	APIKeySet    bool   `json:"api_key_set"`
	Threshold    string `json:"threshold"`
	Interval     int    `json:"interval"`
	ChartVisible bool   `json:"chart_visible"`
	Timeframe    string `json:"timeframe"`
}

// FeedEntry represents one whale in the feed
type FeedEntry struct {
	ID          string    `json:"id"`
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	From        string    `json:"from"`
	FromDisplay string    `json:"from_display"`
	FromURL     string    `json:"from_url"`
	To          string    `json:"to"`
	ToDisplay   string    `json:"to_display"`
	ToURL       string    `json:"to_url,omitempty"`
	ValueETH    string    `json:"value_eth"`
	ExplorerURL string    `json:"explorer_url"`
	DetectedAt  time.Time `json:"detected_at"`
}

// FeedResponse represents the whale feed
type FeedResponse struct {
	Count   int         `json:"count"`
	Entries []FeedEntry `json:"entries"`
}

// AliasRequest represents the body for setting an alias
type AliasRequest struct {
	Alias string `json:"alias"`
}

// AliasResponse represents one alias table entry
type AliasResponse struct {
	Address string `json:"address"`
	Alias   string `json:"alias"`
}

// Candle represents one OHLC bar
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// CandlesResponse represents the price history for one timeframe
type CandlesResponse struct {
	Timeframe string   `json:"timeframe"`
	Candles   []Candle `json:"candles"`
}

// ErrorResponse represents the API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
