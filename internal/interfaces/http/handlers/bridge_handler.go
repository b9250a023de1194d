// Package handlers binds HTTP requests to the orchestrator.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bridgekit.backend/internal/domain/entities"
	domainerrors "bridgekit.backend/internal/domain/errors"
	"bridgekit.backend/internal/interfaces/http/response"
)

// Orchestrator is the narrow interface BridgeHandler calls through,
// satisfied by *orchestrator.Orchestrator.
type Orchestrator interface {
	GetTx(ctx context.Context, req entities.BridgeRequest) (entities.BridgeResponse, error)
}

// BridgeHandler exposes the bridging quote endpoint.
type BridgeHandler struct {
	orchestrator Orchestrator
}

// NewBridgeHandler constructs a BridgeHandler around an orchestrator.
func NewBridgeHandler(o Orchestrator) *BridgeHandler {
	return &BridgeHandler{orchestrator: o}
}

// Quote handles POST /v1/bridge/quote: it validates the request body
// and delegates to the orchestrator's provider race.
func (h *BridgeHandler) Quote(c *gin.Context) {
	var req entities.BridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid bridge request: "+err.Error()))
		return
	}

	resp, err := h.orchestrator.GetTx(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
