package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// applyCORSMiddleware allows browser-based callers (wallet UIs) to hit
// the bridging endpoint directly; any Origin is echoed back since the
// API carries no session cookies.
func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

// registerHealthRoute exposes a liveness probe used by the deployment
// platform and by local smoke tests.
func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "bridgekit-backend",
			"version": "0.1.0",
		})
	})
}
