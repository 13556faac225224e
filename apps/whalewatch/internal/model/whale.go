package model

import (
	"math/big"
	"time"
)

// Transaction is a block transaction as returned by a gateway
type Transaction struct {
	Hash        string
	BlockNumber uint64
	From        string
	To          string // empty for contract creation
	Value       *big.Int
}

// Whale is a transaction whose value met the configured threshold
type Whale struct {
	ID          string    `json:"id"`
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ValueWei    *big.Int  `json:"-"`
	ValueETH    string    `json:"value_eth"`
	ExplorerURL string    `json:"explorer_url"`
	DetectedAt  time.Time `json:"detected_at"`
}
