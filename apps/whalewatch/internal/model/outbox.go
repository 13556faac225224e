package model

import (
	"time"
)

const (
	OutboxStatusUnsent     = "unsent"
	OutboxStatusProcessing = "processing"
	OutboxStatusSent       = "sent"
)

type OutboxEvent struct {
	ID          string    `db:"id"`
	TxHash      string    `db:"tx_hash"`
	Status      string    `db:"status"`
	ChainID     uint64    `db:"chain_id"`
	BlockNumber uint64    `db:"block_number"`
	FromAddress string    `db:"from_address"`
	ToAddress   string    `db:"to_address"`
	ValueWei    string    `db:"value_wei"`
	ValueETH    string    `db:"value_eth"`
	DetectedAt  time.Time `db:"detected_at"`
	CreatedAt   time.Time `db:"created_at"`
}
