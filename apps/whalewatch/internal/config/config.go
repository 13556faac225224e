package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	GatewayEtherscan = "etherscan"
	GatewayRPC       = "rpc"
)

type Config struct {
	DbURL            string
	Gateway          string
	EtherscanAPIKey  string
	EtherscanBaseURL string
	RpcURL           string
	ChainID          uint64
	ThresholdETH     string
	PollInterval     int
	FeedLimit        int
	PriceBaseURL     string
	RedisURL         string
	KafkaBroker      string
	KafkaTopic       string
	APIPort          int
	AutoStart        bool
}

// NewConfig loads configuration from environment variables
func NewConfig() *Config {
	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg := &Config{
		DbURL:            getEnvOrFatal("DB_URL"),
		Gateway:          strings.ToLower(getEnv("GATEWAY", GatewayEtherscan)),
		EtherscanAPIKey:  os.Getenv("ETHERSCAN_API_KEY"),
		EtherscanBaseURL: getEnv("ETHERSCAN_BASE_URL", "https://api.etherscan.io/v2/api"),
		RpcURL:           os.Getenv("RPC_URL"),
		ChainID:          getEnvUint64("CHAIN_ID", 1),
		ThresholdETH:     getEnv("WHALE_THRESHOLD_ETH", "100"),
		PollInterval:     getEnvInt("POLL_INTERVAL_SECONDS", 10),
		FeedLimit:        getEnvInt("FEED_LIMIT", 500),
		PriceBaseURL:     getEnv("PRICE_BASE_URL", "https://min-api.cryptocompare.com/data/v2"),
		RedisURL:         os.Getenv("REDIS_URL"),
		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "whale-alerts"),
		APIPort:          getEnvInt("API_PORT", 8080),
		AutoStart:        getEnvBool("AUTO_START", false),
	}

	if cfg.Gateway == GatewayRPC && cfg.RpcURL == "" {
		log.Fatalf("Warning: environment variable RPC_URL not set but GATEWAY=%s", GatewayRPC)
	}

	return cfg
}

// KafkaEnabled reports whether whale alerts should be published
func (c *Config) KafkaEnabled() bool {
	return c.KafkaBroker != ""
}

// RequiresAPIKey reports whether the configured gateway needs an Etherscan key
func (c *Config) RequiresAPIKey() bool {
	return c.Gateway != GatewayRPC
}

func getEnvOrFatal(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	log.Fatalf("Warning: environment variable %s not set", key)

	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return defaultValue
}
