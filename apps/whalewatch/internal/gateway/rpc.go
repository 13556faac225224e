package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/model"
)

// RPCGateway reads blocks straight from a JSON-RPC node
type RPCGateway struct {
	client *ethclient.Client
	logger *zap.Logger
}

func NewRPCGateway(ctx context.Context, rpcURL string, logger *zap.Logger) (*RPCGateway, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum client: %w", err)
	}

	return &RPCGateway{client: client, logger: logger}, nil
}

func (g *RPCGateway) BlockNumber(ctx context.Context) (uint64, error) {
	number, err := g.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	return number, nil
}

func (g *RPCGateway) BlockTransactions(ctx context.Context, number uint64) ([]model.Transaction, error) {
	block, err := g.client.BlockByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("block %d: %w", number, ErrBlockNotFound)
		}
		return nil, fmt.Errorf("failed to get block %d: %w", number, err)
	}

	txs := block.Transactions()
	transactions := make([]model.Transaction, 0, len(txs))
	for i, tx := range txs {
		// The sender is cached from the RPC response, so this does not hit the node
		from, err := g.client.TransactionSender(ctx, tx, block.Hash(), uint(i))
		if err != nil {
			g.logger.Debug("Failed to resolve sender", zap.String("tx_hash", tx.Hash().Hex()), zap.Error(err))
		}

		to := ""
		if tx.To() != nil {
			to = strings.ToLower(tx.To().Hex())
		}

		fromHex := ""
		if err == nil {
			fromHex = strings.ToLower(from.Hex())
		}

		transactions = append(transactions, model.Transaction{
			Hash:        tx.Hash().Hex(),
			BlockNumber: number,
			From:        fromHex,
			To:          to,
			Value:       tx.Value(),
		})
	}

	return transactions, nil
}

func (g *RPCGateway) Close() error {
	if g.client != nil {
		g.client.Close()
	}
	return nil
}
