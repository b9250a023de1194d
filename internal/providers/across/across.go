// Package across implements the Across Provider from spec §4.3: it
// fans out to Across's limits and suggested-fees HTTP endpoints and to
// the source chain's RPC for the latest block timestamp, then
// ABI-encodes a depositV3 call against the quoted spoke pool.
package across

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bridgekit.backend/internal/abiutil"
	"bridgekit.backend/internal/domain/entities"
	domainerrors "bridgekit.backend/internal/domain/errors"
	"bridgekit.backend/internal/infrastructure/blockchain"
	"bridgekit.backend/pkg/logger"
)

const providerName = "Across"

// Provider builds Across quotes. One Provider is constructed once and
// shared across concurrent requests: its HTTP client is connection-
// pooled and its EVM clients come from a shared ClientFactory.
type Provider struct {
	httpClient    *http.Client
	baseURL       string
	clientFactory *blockchain.ClientFactory
	rpcURLs       map[uint32]string
}

// New constructs an Across Provider against baseURL (e.g.
// "https://app.across.to"), sharing httpClient and clientFactory with
// the rest of the process. rpcURLs resolves a chain id to its RPC
// endpoint, mirroring the Chain Registry's per-chain table.
func New(httpClient *http.Client, baseURL string, clientFactory *blockchain.ClientFactory, rpcURLs map[uint32]string) *Provider {
	return &Provider{httpClient: httpClient, baseURL: baseURL, clientFactory: clientFactory, rpcURLs: rpcURLs}
}

type limitsResponse struct {
	MinDeposit               string `json:"minDeposit"`
	MaxDeposit               string `json:"maxDeposit"`
	MaxDepositInstant        string `json:"maxDepositInstant"`
	MaxDepositShortDelay     string `json:"maxDepositShortDelay"`
	RecommendedDepositInstant string `json:"recommendedDepositInstant"`
}

type totalRelayFee struct {
	Pct   string `json:"pct"`
	Total string `json:"total"`
}

type suggestedFeesResponse struct {
	Timestamp        string        `json:"timestamp"`
	SpokePoolAddress string        `json:"spokePoolAddress"`
	TotalRelayFee    totalRelayFee `json:"totalRelayFee"`
}

// GetBridgingData runs the Across quote pipeline described in spec §4.3.
func (p *Provider) GetBridgingData(ctx context.Context, req entities.BridgeRequest) (resp entities.BridgeResponse, err error) {
	fields := []zap.Field{
		zap.String("provider", providerName),
		zap.Uint32("srcChainId", req.SrcChainID),
		zap.Uint32("destChainId", req.DestChainID),
		zap.String("amount", req.SrcAmount),
	}
	logger.Info(ctx, "across: quote requested", fields...)
	defer func() {
		if err != nil {
			logger.Warn(ctx, "across: quote failed", append(fields, zap.Error(err))...)
			return
		}
		logger.Info(ctx, "across: quote built", fields...)
	}()

	rpcURL, err := p.rpcURLFor(req.SrcChainID)
	if err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, err)
	}

	var limits limitsResponse
	var fees suggestedFeesResponse
	var blockTimestamp uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := p.fetchLimits(gctx, req)
		if err != nil {
			return err
		}
		limits = v
		return nil
	})
	g.Go(func() error {
		v, err := p.fetchSuggestedFees(gctx, req)
		if err != nil {
			return err
		}
		fees = v
		return nil
	})
	g.Go(func() error {
		client, err := p.clientFactory.GetEVMClient(rpcURL)
		if err != nil {
			return err
		}
		blockNum, err := client.GetBlockNumber(gctx)
		if err != nil {
			return err
		}
		ts, err := client.GetBlockTimestamp(gctx, blockNum)
		if err != nil {
			return err
		}
		blockTimestamp = ts
		return nil
	})
	if err := g.Wait(); err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, err)
	}

	srcAmount, ok := new(big.Int).SetString(req.SrcAmount, 10)
	if !ok {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrU256Parse)
	}
	maxDeposit, ok := new(big.Int).SetString(limits.MaxDeposit, 10)
	if !ok {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrU256Parse)
	}
	if srcAmount.Cmp(maxDeposit) > 0 {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrAmountExceedsLimit)
	}

	totalFee, ok := new(big.Int).SetString(fees.TotalRelayFee.Total, 10)
	if !ok {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrU256Parse)
	}
	if totalFee.Cmp(srcAmount) > 0 {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrArithmeticUnderflow)
	}
	outputAmount := new(big.Int).Sub(srcAmount, totalFee)

	if req.DestAmount.Valid {
		destAmount, ok := new(big.Int).SetString(req.DestAmount.String, 10)
		if !ok {
			return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrU256Parse)
		}
		if destAmount.Cmp(outputAmount) > 0 {
			return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrInsufficientOutput)
		}
	}

	quoteTimestamp, err := strconv.ParseUint(fees.Timestamp, 10, 32)
	if err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrU256Parse)
	}
	fillDeadline := uint32(blockTimestamp + 120)

	var message []byte
	if req.Calldata.Valid && req.Calldata.String != "" {
		message = common.FromHex(req.Calldata.String)
	}

	data, err := abiutil.PackDepositV3(abiutil.DepositV3Params{
		Depositor:           common.HexToAddress(req.SrcCaller),
		Recipient:           common.HexToAddress(req.DestRecipient),
		InputToken:          common.HexToAddress(req.SrcToken),
		OutputToken:         common.HexToAddress(req.DestToken),
		InputAmount:         srcAmount,
		OutputAmount:        outputAmount,
		DestinationChainID:  new(big.Int).SetUint64(uint64(req.DestChainID)),
		ExclusiveRelayer:    common.Address{},
		QuoteTimestamp:      uint32(quoteTimestamp),
		FillDeadline:        fillDeadline,
		ExclusivityDeadline: 0,
		Message:             message,
	})
	if err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, err)
	}

	tx := entities.TxData{
		To:    fees.SpokePoolAddress,
		Data:  "0x" + common.Bytes2Hex(data),
		Value: "0",
	}
	if err := tx.Validate(); err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, err)
	}

	return entities.BridgeResponse{
		Provider:     entities.ProviderAcross,
		BridgeAction: entities.NewBridgingTx(tx),
	}, nil
}

func (p *Provider) fetchLimits(ctx context.Context, req entities.BridgeRequest) (limitsResponse, error) {
	q := url.Values{}
	q.Set("originChainId", fmt.Sprint(req.SrcChainID))
	q.Set("inputToken", req.SrcToken)
	q.Set("destinationChainId", fmt.Sprint(req.DestChainID))
	q.Set("outputToken", req.DestToken)

	var out limitsResponse
	err := p.getJSON(ctx, "/api/limits", q, &out)
	return out, err
}

func (p *Provider) fetchSuggestedFees(ctx context.Context, req entities.BridgeRequest) (suggestedFeesResponse, error) {
	q := url.Values{}
	q.Set("originChainId", fmt.Sprint(req.SrcChainID))
	q.Set("inputToken", req.SrcToken)
	q.Set("destinationChainId", fmt.Sprint(req.DestChainID))
	q.Set("outputToken", req.DestToken)
	q.Set("recipient", req.DestRecipient)
	q.Set("amount", req.SrcAmount)

	var out suggestedFeesResponse
	err := p.getJSON(ctx, "/api/suggested-fees", q, &out)
	return out, err
}

func (p *Provider) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	reqURL := p.baseURL + path + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("across %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *Provider) rpcURLFor(chainID uint32) (string, error) {
	url, ok := p.rpcURLs[chainID]
	if !ok {
		return "", fmt.Errorf("no rpc url configured for chain %d", chainID)
	}
	return url, nil
}
