package across

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	domainerrors "bridgekit.backend/internal/domain/errors"
	"bridgekit.backend/internal/domain/entities"
	"bridgekit.backend/internal/infrastructure/blockchain"
)

func newAcrossTestServer(t *testing.T, maxDeposit, feeTotal, timestamp, spokePool string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/api/limits"):
			_ = json.NewEncoder(w).Encode(map[string]string{
				"minDeposit": "1", "maxDeposit": maxDeposit,
				"maxDepositInstant": maxDeposit, "maxDepositShortDelay": maxDeposit,
				"recommendedDepositInstant": maxDeposit,
			})
		case strings.Contains(r.URL.Path, "/api/suggested-fees"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"timestamp":        timestamp,
				"spokePoolAddress": spokePool,
				"totalRelayFee":    map[string]string{"pct": "0", "total": feeTotal},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func baseRequest() entities.BridgeRequest {
	return entities.BridgeRequest{
		SrcChainID:    8453,
		DestChainID:   42161,
		SrcToken:      "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		DestToken:     "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		SrcCaller:     "0x000007357111E4789005d4eBfF401a18D99770cE",
		DestRecipient: "0x000007357111E4789005d4eBfF401a18D99770cE",
		SrcAmount:     "2000000",
	}
}

func newRPCStub(t *testing.T, blockTimestamp uint64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			ID     interface{}     `json:"id"`
			Params json.RawMessage `json:"params"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_chainId":
			resp["result"] = "0x2105"
		case "eth_blockNumber":
			resp["result"] = "0x2a"
		case "eth_getBlockByNumber":
			resp["result"] = map[string]interface{}{
				"number":           "0x2a",
				"hash":             "0x" + strings.Repeat("1", 64),
				"parentHash":       "0x" + strings.Repeat("0", 64),
				"timestamp":        toHex(blockTimestamp),
				"gasLimit":         "0x5208",
				"gasUsed":          "0x0",
				"miner":            "0x0000000000000000000000000000000000000000",
				"difficulty":       "0x0",
				"extraData":        "0x",
				"logsBloom":        "0x" + strings.Repeat("0", 512),
				"transactionsRoot": "0x" + strings.Repeat("0", 64),
				"stateRoot":        "0x" + strings.Repeat("0", 64),
				"receiptsRoot":     "0x" + strings.Repeat("0", 64),
				"sha3Uncles":       "0x" + strings.Repeat("0", 64),
				"mixHash":          "0x" + strings.Repeat("0", 64),
				"nonce":            "0x0000000000000000",
			}
		default:
			resp["result"] = "0x0"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func toHex(n uint64) string {
	return "0x" + big.NewInt(int64(n)).Text(16)
}

func TestGetBridgingData_HappyPath(t *testing.T) {
	rpcSrv := newRPCStub(t, 1634150000)
	defer rpcSrv.Close()
	acrossSrv := newAcrossTestServer(t, "10000000", "1000", "1634160000", "0x1234567890123456789012345678901234567890")
	defer acrossSrv.Close()

	factory := blockchain.NewClientFactory()
	provider := New(acrossSrv.Client(), acrossSrv.URL, factory, map[uint32]string{8453: rpcSrv.URL})

	resp, err := provider.GetBridgingData(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, entities.ProviderAcross, resp.Provider)
	require.Equal(t, entities.BridgeActionBridgingTx, resp.BridgeAction.Kind)
	require.NotNil(t, resp.BridgeAction.BridgingTx)
	assert.Equal(t, "0x1234567890123456789012345678901234567890", resp.BridgeAction.BridgingTx.To)
	assert.Equal(t, "0", resp.BridgeAction.BridgingTx.Value)
	assert.True(t, strings.HasPrefix(resp.BridgeAction.BridgingTx.Data, "0x7b939232"))
}

func TestGetBridgingData_AmountExceedsLimit(t *testing.T) {
	rpcSrv := newRPCStub(t, 1634150000)
	defer rpcSrv.Close()
	acrossSrv := newAcrossTestServer(t, "1000000", "1000", "1634160000", "0x1234567890123456789012345678901234567890")
	defer acrossSrv.Close()

	factory := blockchain.NewClientFactory()
	provider := New(acrossSrv.Client(), acrossSrv.URL, factory, map[uint32]string{8453: rpcSrv.URL})

	req := baseRequest()
	req.SrcAmount = "2000000"
	_, err := provider.GetBridgingData(context.Background(), req)
	require.Error(t, err)
	var perr *domainerrors.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, perr, domainerrors.ErrAmountExceedsLimit)
}

func TestGetBridgingData_InsufficientOutput(t *testing.T) {
	rpcSrv := newRPCStub(t, 1634150000)
	defer rpcSrv.Close()
	acrossSrv := newAcrossTestServer(t, "10000000", "1000", "1634160000", "0x1234567890123456789012345678901234567890")
	defer acrossSrv.Close()

	factory := blockchain.NewClientFactory()
	provider := New(acrossSrv.Client(), acrossSrv.URL, factory, map[uint32]string{8453: rpcSrv.URL})

	req := baseRequest()
	req.DestAmount = null.StringFrom("1999001") // output is 2000000-1000=1999000, below this
	_, err := provider.GetBridgingData(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requested destination amount is unreachable")
}

func TestGetBridgingData_NonSuccessHTTP_IsProviderError(t *testing.T) {
	rpcSrv := newRPCStub(t, 1634150000)
	defer rpcSrv.Close()
	acrossSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer acrossSrv.Close()

	factory := blockchain.NewClientFactory()
	provider := New(acrossSrv.Client(), acrossSrv.URL, factory, map[uint32]string{8453: rpcSrv.URL})

	_, err := provider.GetBridgingData(context.Background(), baseRequest())
	require.Error(t, err)
	var perr *domainerrors.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, providerName, perr.Provider)
}
