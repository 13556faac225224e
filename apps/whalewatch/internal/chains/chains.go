package chains

import (
	"fmt"
	"strings"
)

// Chain represents an EVM network reachable through the Etherscan v2 gateway
type Chain struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int    `json:"decimals"`
	ExplorerURL string `json:"explorer_url"`
}

// TxURL returns the explorer link for a transaction hash
func (c *Chain) TxURL(txHash string) string {
	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(c.ExplorerURL, "/"), txHash)
}

// AddressURL returns the explorer link for an address
func (c *Chain) AddressURL(address string) string {
	return fmt.Sprintf("%s/address/%s", strings.TrimRight(c.ExplorerURL, "/"), address)
}

// ChainRegistry holds all supported chains
type ChainRegistry struct {
	byID map[uint64]*Chain
}

// NewChainRegistry creates a new chain registry with all supported chains
func NewChainRegistry() *ChainRegistry {
	registry := &ChainRegistry{
		byID: make(map[uint64]*Chain),
	}

	supportedChains := []*Chain{
		{
			ID:          1,
			Name:        "ethereum",
			Symbol:      "ETH",
			Decimals:    18,
			ExplorerURL: "https://etherscan.io",
		},
		{
			ID:          11155111,
			Name:        "sepolia",
			Symbol:      "ETH",
			Decimals:    18,
			ExplorerURL: "https://sepolia.etherscan.io",
		},
		{
			ID:          10,
			Name:        "optimism",
			Symbol:      "ETH",
			Decimals:    18,
			ExplorerURL: "https://optimistic.etherscan.io",
		},
		{
			ID:          42161,
			Name:        "arbitrum",
			Symbol:      "ETH",
			Decimals:    18,
			ExplorerURL: "https://arbiscan.io",
		},
		{
			ID:          8453,
			Name:        "base",
			Symbol:      "ETH",
			Decimals:    18,
			ExplorerURL: "https://basescan.org",
		},
		{
			ID:          56,
			Name:        "bsc",
			Symbol:      "BNB",
			Decimals:    18,
			ExplorerURL: "https://bscscan.com",
		},
		{
			ID:          137,
			Name:        "polygon",
			Symbol:      "POL",
			Decimals:    18,
			ExplorerURL: "https://polygonscan.com",
		},
	}

	for _, chain := range supportedChains {
		registry.byID[chain.ID] = chain
	}

	return registry
}

// GetByID returns a chain by its id
func (r *ChainRegistry) GetByID(id uint64) (*Chain, bool) {
	chain, exists := r.byID[id]
	return chain, exists
}

// Global chain registry instance
var GlobalRegistry = NewChainRegistry()

// Mainnet is the default network
var Mainnet = GlobalRegistry.byID[1]
