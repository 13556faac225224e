package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/model"
	"whalewatch/apps/whalewatch/internal/units"
)

// EtherscanGateway talks to the Etherscan v2 "proxy" module, which forwards
// eth_* calls to a node
type EtherscanGateway struct {
	restyClient *resty.Client
	baseURL     string
	chainID     uint64
	logger      *zap.Logger

	mu     sync.RWMutex
	apiKey string
}

// etherscanEnvelope covers both the proxied JSON-RPC reply and the
// {"status":"0","message":"NOTOK","result":"..."} error shape
type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type etherscanBlock struct {
	Number       string        `json:"number"`
	Hash         string        `json:"hash"`
	Transactions []etherscanTx `json:"transactions"`
}

type etherscanTx struct {
	Hash        string  `json:"hash"`
	BlockNumber string  `json:"blockNumber"`
	From        string  `json:"from"`
	To          *string `json:"to"`
	Value       string  `json:"value"`
}

func NewEtherscanGateway(baseURL string, chainID uint64, apiKey string, logger *zap.Logger) *EtherscanGateway {
	return &EtherscanGateway{
		restyClient: resty.New().SetTimeout(10 * time.Second),
		baseURL:     baseURL,
		chainID:     chainID,
		apiKey:      apiKey,
		logger:      logger,
	}
}

// SetAPIKey swaps the key used for subsequent requests
func (g *EtherscanGateway) SetAPIKey(apiKey string) {
	g.mu.Lock()
	g.apiKey = apiKey
	g.mu.Unlock()
}

func (g *EtherscanGateway) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := g.call(ctx, map[string]string{
		"action": "eth_blockNumber",
	})
	if err != nil {
		return 0, err
	}

	var quantity string
	if err := json.Unmarshal(result, &quantity); err != nil {
		return 0, fmt.Errorf("failed to decode block number: %w", err)
	}

	return units.ParseHexUint64(quantity)
}

func (g *EtherscanGateway) BlockTransactions(ctx context.Context, number uint64) ([]model.Transaction, error) {
	result, err := g.call(ctx, map[string]string{
		"action":  "eth_getBlockByNumber",
		"tag":     hexutil.EncodeUint64(number),
		"boolean": "true",
	})
	if err != nil {
		return nil, err
	}

	if len(result) == 0 || string(result) == "null" {
		return nil, fmt.Errorf("block %d: %w", number, ErrBlockNotFound)
	}

	var block etherscanBlock
	if err := json.Unmarshal(result, &block); err != nil {
		return nil, fmt.Errorf("failed to decode block %d: %w", number, err)
	}

	transactions := make([]model.Transaction, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		value, err := units.ParseHexWei(tx.Value)
		if err != nil {
			g.logger.Debug("Skipping transaction with unparsable value",
				zap.String("tx_hash", tx.Hash),
				zap.String("value", tx.Value),
				zap.Error(err))
			continue
		}

		to := ""
		if tx.To != nil {
			to = strings.ToLower(*tx.To)
		}

		transactions = append(transactions, model.Transaction{
			Hash:        tx.Hash,
			BlockNumber: number,
			From:        strings.ToLower(tx.From),
			To:          to,
			Value:       value,
		})
	}

	return transactions, nil
}

func (g *EtherscanGateway) call(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	var envelope etherscanEnvelope

	g.mu.RLock()
	apiKey := g.apiKey
	g.mu.RUnlock()

	resp, err := g.restyClient.R().
		SetContext(ctx).
		SetQueryParam("chainid", strconv.FormatUint(g.chainID, 10)).
		SetQueryParam("module", "proxy").
		SetQueryParams(params).
		SetQueryParam("apikey", apiKey).
		ForceContentType("application/json").
		SetResult(&envelope).
		Get(g.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", params["action"], err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%s: http %d: %s", params["action"], resp.StatusCode(), resp.String())
	}

	if envelope.Error != nil {
		return nil, fmt.Errorf("%s: rpc error %d: %s", params["action"], envelope.Error.Code, envelope.Error.Message)
	}

	if envelope.Message == "NOTOK" || envelope.Status == "0" {
		var reason string
		_ = json.Unmarshal(envelope.Result, &reason)
		if strings.Contains(strings.ToLower(reason), "rate limit") {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, reason)
	}

	return envelope.Result, nil
}

func (g *EtherscanGateway) Close() error {
	return nil
}
