// Package allowance implements the allowance/permit decision procedure
// described in spec section 4.2: given a token, owner, spender and
// amount on an EVM chain, it classifies the caller's pre-state into
// one of five AllowanceAction variants.
package allowance

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"bridgekit.backend/internal/abiutil"
	"bridgekit.backend/internal/domain/entities"
	domainerrors "bridgekit.backend/internal/domain/errors"
	"bridgekit.backend/internal/infrastructure/blockchain"
	"bridgekit.backend/pkg/logger"
)

// Engine evaluates the allowance/permit state machine against a
// caller-supplied EVM client. One Engine is process-lifetime and safe
// for concurrent use; its bytecode-permit cache is keyed per
// (chain id, token address).
type Engine struct {
	permitCache sync.Map // cacheKey -> bool
}

type cacheKey struct {
	chainID uint32
	token   string
}

// NewEngine constructs an Engine with an empty, process-lifetime
// bytecode-permit cache.
func NewEngine() *Engine {
	return &Engine{}
}

// Params bundles the inputs to Evaluate.
type Params struct {
	Provider       string // name of the calling provider, for logging only
	ChainID        uint32
	Client         *blockchain.EVMClient
	Token          string
	Owner          string
	Spender        string
	Amount         *big.Int
	Permit2Address string // empty if no Permit2 deployment is known for this chain
}

// Evaluate runs the four-step decision procedure from spec §4.2,
// top-down, first matching branch wins.
func (e *Engine) Evaluate(ctx context.Context, p Params) (action entities.AllowanceAction, err error) {
	fields := []zap.Field{
		zap.String("provider", p.Provider),
		zap.Uint32("srcChainId", p.ChainID),
		zap.String("amount", p.Amount.String()),
	}
	defer func() {
		if err != nil {
			logger.Warn(ctx, "allowance: evaluate failed", append(fields, zap.Error(err))...)
			return
		}
		logger.Info(ctx, "allowance: decision", append(fields, zap.String("kind", string(action.Kind)))...)
	}()

	token := common.HexToAddress(p.Token)
	owner := common.HexToAddress(p.Owner)
	spender := common.HexToAddress(p.Spender)

	// Step 1: allowance(owner, spender) >= amount -> Ok
	allowed, err := e.readAllowance(ctx, p.Client, token, owner, spender)
	if err != nil {
		return entities.AllowanceAction{}, domainerrors.NewProviderError("allowance-engine", err)
	}
	if allowed.Cmp(p.Amount) >= 0 {
		return entities.AllowanceActionOk(), nil
	}

	// Step 2: bytecode permit-selector probe.
	supportsPermit, err := e.supportsPermit(ctx, p.ChainID, p.Client, p.Token)
	if err != nil {
		return entities.AllowanceAction{}, domainerrors.NewProviderError("allowance-engine", err)
	}
	if supportsPermit {
		return entities.AllowanceActionPermitSignature(placeholderTypedData("eip2612", p.Token, p.Owner, p.Spender, p.Amount)), nil
	}

	// Step 3: Permit2, if a canonical address is known for this chain.
	if p.Permit2Address != "" {
		permit2 := common.HexToAddress(p.Permit2Address)
		permit2Allowed, err := e.readAllowance(ctx, p.Client, token, owner, permit2)
		if err != nil {
			return entities.AllowanceAction{}, domainerrors.NewProviderError("allowance-engine", err)
		}
		if permit2Allowed.Cmp(p.Amount) >= 0 {
			return entities.AllowanceActionPermit2Signature(placeholderTypedData("permit2", p.Token, p.Owner, p.Spender, p.Amount)), nil
		}

		approveData, err := abiutil.PackApprove(permit2, abiutil.MaxUint256())
		if err != nil {
			return entities.AllowanceAction{}, domainerrors.NewProviderError("allowance-engine", err)
		}
		tx := entities.TxData{To: p.Token, Data: "0x" + common.Bytes2Hex(approveData), Value: "0"}
		if err := tx.Validate(); err != nil {
			return entities.AllowanceAction{}, domainerrors.NewProviderError("allowance-engine", err)
		}
		permit2TypedData := placeholderTypedData("permit2", p.Token, p.Owner, p.Permit2Address, p.Amount)
		return entities.AllowanceActionPermit2Tx(tx, permit2TypedData), nil
	}

	// Step 4: plain ERC-20 approve of the spender.
	approveData, err := abiutil.PackApprove(spender, abiutil.MaxUint256())
	if err != nil {
		return entities.AllowanceAction{}, domainerrors.NewProviderError("allowance-engine", err)
	}
	tx := entities.TxData{To: p.Token, Data: "0x" + common.Bytes2Hex(approveData), Value: "0"}
	if err := tx.Validate(); err != nil {
		return entities.AllowanceAction{}, domainerrors.NewProviderError("allowance-engine", err)
	}
	return entities.AllowanceActionApprovalTx(tx), nil
}

func (e *Engine) readAllowance(ctx context.Context, client *blockchain.EVMClient, token, owner, spender common.Address) (*big.Int, error) {
	data, err := abiutil.PackAllowance(owner, spender)
	if err != nil {
		return nil, err
	}
	out, err := client.CallView(ctx, token.Hex(), data)
	if err != nil {
		return nil, err
	}
	return abiutil.UnpackAllowance(out)
}

func (e *Engine) supportsPermit(ctx context.Context, chainID uint32, client *blockchain.EVMClient, token string) (bool, error) {
	key := cacheKey{chainID: chainID, token: token}
	if cached, ok := e.permitCache.Load(key); ok {
		return cached.(bool), nil
	}

	code, err := client.GetCode(ctx, token)
	if err != nil {
		return false, err
	}
	supports := abiutil.HasPermitSelector(code)
	e.permitCache.Store(key, supports)
	return supports, nil
}

// placeholderTypedData builds the engine's placeholder EIP-712 typed
// data payload. The caller-facing signer is responsible for the real
// typed-data construction and signature; this satisfies the engine's
// contract of returning *some* payload the caller re-signs against.
func placeholderTypedData(kind, token, owner, spender string, amount *big.Int) string {
	return fmt.Sprintf("typed-data:%s:token=%s:owner=%s:spender=%s:amount=%s", kind, token, owner, spender, amount.String())
}
