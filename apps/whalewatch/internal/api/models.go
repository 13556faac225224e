package api

import (
	"time"

	"whalewatch/apps/whalewatch/internal/model"
)

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

// SettingsRequest represents a partial settings update; nil fields keep their value
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

// FeedResponse represents the whale feed, newest first
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

// CandlesResponse represents the price history for one timeframe
type CandlesResponse struct {
	Timeframe string         `json:"timeframe"`
	Candles   []model.Candle `json:"candles"`
}

// MarkersResponse represents whale markers for the chart
type MarkersResponse struct {
	Markers []model.Marker `json:"markers"`
}

// ErrorResponse represents the API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
