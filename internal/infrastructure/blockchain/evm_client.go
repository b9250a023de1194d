package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// dialEVMClient and getClientChainID are indirected through package
// variables so tests can substitute a fake dial/handshake without a
// live RPC endpoint.
var (
	dialEVMClient = func(rpcURL string) (*ethclient.Client, error) {
		return ethclient.Dial(rpcURL)
	}
	getClientChainID = func(c *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return c.ChainID(ctx)
	}
)

// callViewFunc performs an eth_call against a contract and returns the
// raw return data.
type callViewFunc func(ctx context.Context, to string, data []byte) ([]byte, error)

// codeFunc fetches deployed bytecode at an address.
type codeFunc func(ctx context.Context, address string) ([]byte, error)

// EVMClient provides EVM blockchain interaction.
type EVMClient struct {
	client       *ethclient.Client
	chainID      *big.Int
	rpcURL       string
	callViewFunc callViewFunc
	codeFunc     codeFunc
}

// NewEVMClient creates a new EVM client.
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// NewEVMClientWithCallView builds an EVMClient backed entirely by an
// injected CallView implementation, with no underlying RPC connection.
// Used by the allowance engine and provider tests to drive deterministic
// eth_call responses.
func NewEVMClientWithCallView(chainID *big.Int, callView callViewFunc) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{chainID: chainID, callViewFunc: callView}
}

// ChainID returns the chain ID.
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// CallView performs a read-only eth_call against `to` with `data`,
// returning the raw return bytes. The allowance engine uses this for
// its `allowance` reads; bytecode probes go through GetCode.
func (c *EVMClient) CallView(ctx context.Context, to string, data []byte) ([]byte, error) {
	if c.callViewFunc != nil {
		return c.callViewFunc(ctx, to, data)
	}
	addr := common.HexToAddress(to)
	msg := ethereum.CallMsg{To: &addr, Data: data}
	return c.client.CallContract(ctx, msg, nil)
}

// GetCode returns the deployed bytecode at an address, used by the
// allowance engine to detect permit-compatible tokens.
func (c *EVMClient) GetCode(ctx context.Context, address string) ([]byte, error) {
	if c.codeFunc != nil {
		return c.codeFunc(ctx, address)
	}
	addr := common.HexToAddress(address)
	return c.client.CodeAt(ctx, addr, nil)
}

// WithCodeFunc overrides GetCode with an injected implementation,
// letting tests drive the allowance engine's bytecode-permit probe
// without a live RPC endpoint.
func (c *EVMClient) WithCodeFunc(fn func(ctx context.Context, address string) ([]byte, error)) *EVMClient {
	c.codeFunc = fn
	return c
}

// GetBlockNumber gets the latest block number.
func (c *EVMClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// GetBlockTimestamp fetches the timestamp of the block at the given
// number, used by the Across provider's fill-deadline calculation.
func (c *EVMClient) GetBlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, err
	}
	return header.Time, nil
}

// Close closes the client connection. No-op when the client has no
// underlying RPC connection (e.g. constructed via NewEVMClientWithCallView).
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
