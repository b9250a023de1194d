// Package registry provides the process-wide Chain Registry: a
// write-once, lazily-initialized mapping from chain id to chain data
// for the closed set of chains the aggregator supports.
package registry

import (
	"fmt"
	"sync"

	"bridgekit.backend/internal/config"
	"bridgekit.backend/internal/domain/entities"
)

// ChainData describes one supported chain.
type ChainData struct {
	ID     uint32
	Name   string
	Type   entities.ChainType
	RPCURL string
}

var (
	once     sync.Once
	registry map[uint32]ChainData
)

// Init seeds the registry from the given configuration. Safe to call
// multiple times; only the first call takes effect, matching the
// teacher's pkg/logger.Init singleton pattern.
func Init(cfg *config.Config) {
	once.Do(func() {
		registry = map[uint32]ChainData{
			1: {
				ID: 1, Name: "ethereum", Type: entities.ChainTypeEVM,
				RPCURL: cfg.Blockchain.RPCURLs[1],
			},
			42161: {
				ID: 42161, Name: "arbitrum", Type: entities.ChainTypeEVM,
				RPCURL: cfg.Blockchain.RPCURLs[42161],
			},
			8453: {
				ID: 8453, Name: "base", Type: entities.ChainTypeEVM,
				RPCURL: cfg.Blockchain.RPCURLs[8453],
			},
			7565164: {
				ID: 7565164, Name: "solana", Type: entities.ChainTypeSVM,
				RPCURL: cfg.Blockchain.RPCURLs[7565164],
			},
		}
	})
}

// SupportedChains returns the closed enumeration of supported chains.
// Panics if Init has not been called; callers initialize the registry
// once at process startup.
func SupportedChains() map[uint32]ChainData {
	mustBeInitialized()
	out := make(map[uint32]ChainData, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// TryFromID looks up a chain by id, returning an error if it is
// outside the closed enumeration.
func TryFromID(id uint32) (ChainData, error) {
	mustBeInitialized()
	data, ok := registry[id]
	if !ok {
		return ChainData{}, fmt.Errorf("unsupported chain: %d", id)
	}
	return data, nil
}

// IsSolana reports whether the chain id is the Solana chain.
func IsSolana(id uint32) bool {
	return id == 7565164
}

func mustBeInitialized() {
	if registry == nil {
		panic("registry: Init must be called before use")
	}
}
