// Package debridge implements the DeBridge Provider from spec §4.4: a
// single create-tx HTTP call that returns the on-chain transaction
// directly, gated by an allowance pre-check on EVM source chains.
package debridge

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"bridgekit.backend/internal/allowance"
	"bridgekit.backend/internal/domain/entities"
	domainerrors "bridgekit.backend/internal/domain/errors"
	"bridgekit.backend/internal/infrastructure/blockchain"
	"bridgekit.backend/internal/registry"
	"bridgekit.backend/pkg/logger"
)

const providerName = "DeBridge"

// Provider builds DeBridge quotes. One Provider is constructed once
// and shared across concurrent requests.
type Provider struct {
	httpClient    *http.Client
	baseURL       string
	clientFactory *blockchain.ClientFactory
	rpcURLs       map[uint32]string
	permit2       map[uint32]string
	allowance     *allowance.Engine
}

// New constructs a DeBridge Provider against baseURL (e.g.
// "https://dln.debridge.finance"). permit2 maps chain id to the
// canonical Permit2 address known on that chain, if any.
func New(httpClient *http.Client, baseURL string, clientFactory *blockchain.ClientFactory, rpcURLs map[uint32]string, permit2 map[uint32]string, engine *allowance.Engine) *Provider {
	return &Provider{
		httpClient:    httpClient,
		baseURL:       baseURL,
		clientFactory: clientFactory,
		rpcURLs:       rpcURLs,
		permit2:       permit2,
		allowance:     engine,
	}
}

type createTxResponse struct {
	Tx struct {
		Data  string `json:"data"`
		To    string `json:"to"`
		Value string `json:"value"`
	} `json:"tx"`
}

// GetBridgingData runs the DeBridge quote pipeline described in spec §4.4.
func (p *Provider) GetBridgingData(ctx context.Context, req entities.BridgeRequest) (resp entities.BridgeResponse, err error) {
	fields := []zap.Field{
		zap.String("provider", providerName),
		zap.Uint32("srcChainId", req.SrcChainID),
		zap.Uint32("destChainId", req.DestChainID),
		zap.String("amount", req.SrcAmount),
	}
	logger.Info(ctx, "debridge: quote requested", fields...)
	defer func() {
		if err != nil {
			logger.Warn(ctx, "debridge: quote failed", append(fields, zap.Error(err))...)
			return
		}
		logger.Info(ctx, "debridge: quote built", append(fields, zap.String("actionKind", string(resp.BridgeAction.Kind)))...)
	}()

	if registry.IsSolana(req.SrcChainID) {
		if _, err := solana.PublicKeyFromBase58(req.SrcToken); err != nil {
			return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, fmt.Errorf("%w: src_token: %v", domainerrors.ErrAddressParse, err))
		}
		if _, err := solana.PublicKeyFromBase58(req.SrcCaller); err != nil {
			return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, fmt.Errorf("%w: src_caller: %v", domainerrors.ErrAddressParse, err))
		}
	}

	txResp, err := p.createTx(ctx, req)
	if err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, err)
	}

	tx := entities.TxData{To: txResp.Tx.To, Data: txResp.Tx.Data, Value: txResp.Tx.Value}

	if registry.IsSolana(req.SrcChainID) {
		// The TxData.to/data invariants are EVM-specific (spec §3); tx.To
		// here is a Solana address, so it is returned as-is, unvalidated.
		return entities.BridgeResponse{Provider: entities.ProviderDeBridge, BridgeAction: entities.NewBridgingTx(tx)}, nil
	}
	if err := tx.Validate(); err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, err)
	}

	rpcURL, ok := p.rpcURLs[req.SrcChainID]
	if !ok {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, fmt.Errorf("no rpc url configured for chain %d", req.SrcChainID))
	}
	client, err := p.clientFactory.GetEVMClient(rpcURL)
	if err != nil {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, err)
	}

	amount, ok := new(big.Int).SetString(req.SrcAmount, 10)
	if !ok {
		return entities.BridgeResponse{}, domainerrors.NewProviderError(providerName, domainerrors.ErrU256Parse)
	}

	action, err := p.allowance.Evaluate(ctx, allowance.Params{
		Provider:       providerName,
		ChainID:        req.SrcChainID,
		Client:         client,
		Token:          req.SrcToken,
		Owner:          req.SrcCaller,
		Spender:        tx.To,
		Amount:         amount,
		Permit2Address: p.permit2[req.SrcChainID],
	})
	if err != nil {
		return entities.BridgeResponse{}, err
	}

	return entities.BridgeResponse{Provider: entities.ProviderDeBridge, BridgeAction: translate(action, tx)}, nil
}

// translate completes the AllowanceAction -> BridgeAction mapping
// spec §9 calls a complete implementation to perform.
func translate(action entities.AllowanceAction, bridgingTx entities.TxData) entities.BridgeAction {
	switch action.Kind {
	case entities.AllowanceOk:
		return entities.NewBridgingTx(bridgingTx)
	case entities.AllowancePermitSignature:
		return entities.NewPermitSignature(action.PermitSignature)
	case entities.AllowancePermit2Signature:
		return entities.NewPermit2Signature(action.Permit2Signature)
	case entities.AllowancePermit2Tx:
		return entities.NewPermit2Tx(*action.Permit2Tx)
	case entities.AllowanceApprovalTx:
		return entities.NewBridgeApprovalTx(entities.ProviderDeBridge, *action.ApprovalTx)
	default:
		return entities.NewBridgingTx(bridgingTx)
	}
}

func (p *Provider) createTx(ctx context.Context, req entities.BridgeRequest) (createTxResponse, error) {
	q := url.Values{}
	q.Set("srcChainId", fmt.Sprint(req.SrcChainID))
	q.Set("srcChainTokenIn", req.SrcToken)
	q.Set("srcChainTokenInAmount", req.SrcAmount)
	q.Set("dstChainId", fmt.Sprint(req.DestChainID))
	q.Set("dstChainTokenOut", req.DestToken)
	q.Set("dstChainTokenOutRecipient", req.DestRecipient)
	q.Set("srcChainOrderAuthorityAddress", req.SrcCaller)
	q.Set("dstChainOrderAuthorityAddress", req.DestRecipient)

	if req.SrcSenderPermit != nil {
		q.Set("srcChainTokenInSenderPermit", req.SrcSenderPermit.Hex)
	}
	if req.DestAmount.Valid {
		q.Set("dstChainTokenOutAmount", req.DestAmount.String)
	}
	if req.Calldata.Valid && req.Calldata.String != "" {
		q.Set("externalCall", req.Calldata.String)
	}

	reqURL := p.baseURL + "/v1.0/dln/order/create-tx?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return createTxResponse{}, err
	}
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return createTxResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return createTxResponse{}, fmt.Errorf("debridge create-tx: unexpected status %d", resp.StatusCode)
	}

	var out createTxResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return createTxResponse{}, err
	}
	return out, nil
}
