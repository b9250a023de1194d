package config

import (
	"os"
	"time"
)

// Config holds all configuration values for the bridging aggregator.
type Config struct {
	Server     ServerConfig
	Blockchain BlockchainConfig
	Providers  ProvidersConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// BlockchainConfig holds per-chain RPC endpoints and the canonical
// Permit2 deployment address used across every EVM chain.
type BlockchainConfig struct {
	RPCURLs        map[uint32]string
	Permit2Address string
}

// ProvidersConfig holds the bridge providers' HTTP base URLs and the
// shared request timeout applied to their calls.
type ProvidersConfig struct {
	AcrossBaseURL   string
	DeBridgeBaseURL string
	RequestTimeout  time.Duration
}

// permit2CanonicalAddress is deployed at the same address on every EVM
// chain via deterministic CREATE2 deployment.
const permit2CanonicalAddress = "0x000000000022D473030F116dDEE9F6B43aC78BA3"

// Load loads configuration from environment variables, falling back
// to well-known public defaults for anything unset.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Blockchain: BlockchainConfig{
			RPCURLs: map[uint32]string{
				1:       getEnv("ETHEREUM_RPC_URL", "https://eth.llamarpc.com"),
				42161:   getEnv("ARBITRUM_RPC_URL", "https://arb1.arbitrum.io/rpc"),
				8453:    getEnv("BASE_RPC_URL", "https://mainnet.base.org"),
				7565164: getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
			},
			Permit2Address: getEnv("PERMIT2_ADDRESS", permit2CanonicalAddress),
		},
		Providers: ProvidersConfig{
			AcrossBaseURL:   getEnv("ACROSS_BASE_URL", "https://app.across.to"),
			DeBridgeBaseURL: getEnv("DEBRIDGE_BASE_URL", "https://api.dln.trade"),
			RequestTimeout:  getEnvAsDuration("PROVIDER_REQUEST_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
