package events

import (
	"time"
)

type WhaleEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	ChainID     uint64    `json:"chain_id"`
	TxHash      string    `json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	ValueWei    string    `json:"value_wei"`
	ValueETH    string    `json:"value_eth"`
	DetectedAt  time.Time `json:"detected_at"`
	Timestamp   time.Time `json:"timestamp"`
}

const EventTypeWhale = "whale_detected"
