package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bridgekit.backend/internal/allowance"
	"bridgekit.backend/internal/config"
	"bridgekit.backend/internal/domain/entities"
	"bridgekit.backend/internal/infrastructure/blockchain"
	"bridgekit.backend/internal/interfaces/http/handlers"
	"bridgekit.backend/internal/interfaces/http/middleware"
	"bridgekit.backend/internal/orchestrator"
	"bridgekit.backend/internal/providers/across"
	"bridgekit.backend/internal/providers/debridge"
	"bridgekit.backend/internal/registry"
	"bridgekit.backend/pkg/logger"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	runServer  = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	registry.Init(cfg)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpClient := &http.Client{Timeout: cfg.Providers.RequestTimeout}
	clientFactory := blockchain.NewClientFactory()
	allowanceEngine := allowance.NewEngine()

	permit2ByChain := evmPermit2Table(cfg)

	acrossProvider := across.New(httpClient, cfg.Providers.AcrossBaseURL, clientFactory, cfg.Blockchain.RPCURLs)
	debridgeProvider := debridge.New(httpClient, cfg.Providers.DeBridgeBaseURL, clientFactory, cfg.Blockchain.RPCURLs, permit2ByChain, allowanceEngine)

	orc := orchestrator.New(acrossProvider, debridgeProvider)
	bridgeHandler := handlers.NewBridgeHandler(orc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{bridgeHandler: bridgeHandler})

	log.Println("Registered routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		cancel()
	}()

	log.Printf("bridgekit backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/v1/bridge/quote", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// evmPermit2Table applies the single canonical Permit2 deployment
// address to every registered EVM chain; Solana has no Permit2
// deployment and is left unset.
func evmPermit2Table(cfg *config.Config) map[uint32]string {
	table := make(map[uint32]string)
	for id, data := range registry.SupportedChains() {
		if data.Type == entities.ChainTypeEVM {
			table[id] = cfg.Blockchain.Permit2Address
		}
	}
	return table
}
