// Package gateway fetches chain height and block transactions from a
// JSON-RPC provider.
package gateway

import (
	"context"
	"errors"

	"whalewatch/apps/whalewatch/internal/model"
)

var (
	// ErrRateLimited is returned when the provider throttles the API key
	ErrRateLimited = errors.New("gateway rate limited")
	// ErrRejected is returned when the provider answers NOTOK for any other reason
	ErrRejected = errors.New("gateway rejected request")
	// ErrBlockNotFound is returned for blocks the provider does not have yet
	ErrBlockNotFound = errors.New("block not found")
)

// Gateway is the read-only chain access the monitor needs
type Gateway interface {
	BlockNumber(ctx context.Context) (uint64, error)
	BlockTransactions(ctx context.Context, number uint64) ([]model.Transaction, error)
	Close() error
}
