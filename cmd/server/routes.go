package main

import (
	"github.com/gin-gonic/gin"

	"bridgekit.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	bridgeHandler *handlers.BridgeHandler
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/v1")
	{
		bridge := v1.Group("/bridge")
		{
			bridge.POST("/quote", d.bridgeHandler.Quote)
		}
	}
}
