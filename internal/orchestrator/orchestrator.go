// Package orchestrator implements the cross-provider selection state
// machine from spec §4.5: it races the Across and DeBridge providers
// and applies an asymmetric preference (Across wins whenever it
// succeeds at all) to pick the final BridgeResponse.
package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"bridgekit.backend/internal/domain/entities"
	domainerrors "bridgekit.backend/internal/domain/errors"
	"bridgekit.backend/internal/registry"
	"bridgekit.backend/pkg/logger"
)

// BridgingProvider is the contract both the Across and DeBridge
// providers satisfy, and the seam the orchestrator's tests fake
// against to drive all four race orderings deterministically.
type BridgingProvider interface {
	GetBridgingData(ctx context.Context, req entities.BridgeRequest) (entities.BridgeResponse, error)
}

// Orchestrator wires the two providers together behind the race
// described in spec §4.5.
type Orchestrator struct {
	across   BridgingProvider
	debridge BridgingProvider
}

// New constructs an Orchestrator. across and debridge are shared,
// process-lifetime provider instances.
func New(across, debridge BridgingProvider) *Orchestrator {
	return &Orchestrator{across: across, debridge: debridge}
}

type result struct {
	resp entities.BridgeResponse
	err  error
}

// GetTx validates both chain ids against the Chain Registry, applies
// the Solana shortcut, and otherwise races Across against DeBridge
// under the preference table from spec §4.5.
func (o *Orchestrator) GetTx(ctx context.Context, req entities.BridgeRequest) (entities.BridgeResponse, error) {
	fields := []zap.Field{
		zap.Uint32("srcChainId", req.SrcChainID),
		zap.Uint32("destChainId", req.DestChainID),
		zap.String("amount", req.SrcAmount),
	}
	logger.Info(ctx, "orchestrator: get_tx started", fields...)

	if _, err := registry.TryFromID(req.SrcChainID); err != nil {
		logger.Warn(ctx, "orchestrator: unsupported src chain", fields...)
		return entities.BridgeResponse{}, domainerrors.UnsupportedChain(req.SrcChainID)
	}
	if _, err := registry.TryFromID(req.DestChainID); err != nil {
		logger.Warn(ctx, "orchestrator: unsupported dest chain", fields...)
		return entities.BridgeResponse{}, domainerrors.UnsupportedChain(req.DestChainID)
	}

	if registry.IsSolana(req.SrcChainID) || registry.IsSolana(req.DestChainID) {
		logger.Info(ctx, "orchestrator: solana shortcut to debridge", fields...)
		resp, err := o.debridge.GetBridgingData(ctx, req)
		if err != nil {
			logger.Error(ctx, "orchestrator: debridge failed on solana shortcut", append(fields, zap.Error(err))...)
		}
		return resp, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	acrossCh := make(chan result, 1)
	debridgeCh := make(chan result, 1)

	go func() {
		resp, err := o.across.GetBridgingData(ctx, req)
		acrossCh <- result{resp, err}
	}()
	go func() {
		resp, err := o.debridge.GetBridgingData(ctx, req)
		debridgeCh <- result{resp, err}
	}()

	select {
	case a := <-acrossCh:
		if a.err == nil {
			logger.Info(ctx, "orchestrator: across resolved first, ok", append(fields, zap.String("provider", string(entities.ProviderAcross)))...)
			return a.resp, nil
		}
		// Across failed first: await DeBridge and return its result.
		logger.Warn(ctx, "orchestrator: across resolved first, failed; awaiting debridge", append(fields, zap.Error(a.err))...)
		d := <-debridgeCh
		if d.err != nil {
			logger.Error(ctx, "orchestrator: both providers failed", append(fields, zap.Error(d.err))...)
		} else {
			logger.Info(ctx, "orchestrator: debridge resolved", append(fields, zap.String("provider", string(entities.ProviderDeBridge)))...)
		}
		return d.resp, d.err
	case d := <-debridgeCh:
		if d.err == nil {
			// DeBridge succeeded first: Across still wins if it also succeeds.
			a := <-acrossCh
			if a.err == nil {
				logger.Info(ctx, "orchestrator: debridge resolved first but across also ok; preferring across", append(fields, zap.String("provider", string(entities.ProviderAcross)))...)
				return a.resp, nil
			}
			logger.Info(ctx, "orchestrator: debridge resolved first, ok; across failed", append(fields, zap.String("provider", string(entities.ProviderDeBridge)), zap.Error(a.err))...)
			return d.resp, nil
		}
		// DeBridge failed first: Across's result wins regardless of outcome.
		logger.Warn(ctx, "orchestrator: debridge resolved first, failed; awaiting across", append(fields, zap.Error(d.err))...)
		a := <-acrossCh
		if a.err != nil {
			logger.Error(ctx, "orchestrator: both providers failed", append(fields, zap.Error(a.err))...)
		} else {
			logger.Info(ctx, "orchestrator: across resolved", append(fields, zap.String("provider", string(entities.ProviderAcross)))...)
		}
		return a.resp, a.err
	}
}
