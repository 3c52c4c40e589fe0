package main // Entry point package

import (
	"context" // Context for the background workers
	"log"     // Logging library
	"time"    // Durations for the chain watcher

	"github.com/ethereum/go-ethereum/common" // Ethereum address type
	"github.com/joho/godotenv"               // Loads .env files in development
	"github.com/labstack/echo/v4"            // Echo web framework

	"github.com/velora/submarket-gateway/internal/chain"      // Wallet provider, session factory, contract binding
	"github.com/velora/submarket-gateway/internal/config"     // Internal config loader
	"github.com/velora/submarket-gateway/internal/handler"    // HTTP handlers
	"github.com/velora/submarket-gateway/internal/market"     // Directory reader and access synchronizer
	"github.com/velora/submarket-gateway/internal/middleware" // Rate limiting middleware
	"github.com/velora/submarket-gateway/internal/queue"      // Audit-trail consumer
	"github.com/velora/submarket-gateway/internal/router"     // Internal router setup
	queue_publisher "github.com/velora/submarket-gateway/internal/service" // RabbitMQ event publisher
	"github.com/velora/submarket-gateway/internal/session"    // Session store
	"github.com/velora/submarket-gateway/internal/storage"    // Content pinning client
)

func main() {
	_ = godotenv.Load() // Load .env if present; real env vars win
	cfg := config.Load() // Load environment config

	// The wallet backend: keystore accounts plus the JSON-RPC node.
	provider, err := chain.NewKeystoreProvider(cfg.RPCURL, cfg.KeystoreDir, cfg.KeystorePassphrase)
	if err != nil {
		log.Fatal(err) // No wallet backend means nothing to serve
	}

	// Sessions resolve the wallet's current chain against the deployment
	// table and bind the contract at the resolved address.
	networks := config.DefaultNetworks()
	factory := chain.NewFactory(provider, networks, func(profile config.NetworkProfile, account common.Address) chain.Contract {
		return chain.NewSubManager(provider, profile, account)
	})

	// The synchronizer re-derives access state on account/chain changes.
	sync := market.NewSynchronizer(factory.Open)
	events := make(chan chain.Event, 8)
	provider.Subscribe(events)

	ctx := context.Background()
	go sync.Run(ctx, events)                                                  // Refresh on provider events
	go provider.WatchChain(ctx, time.Duration(cfg.ChainWatchSec)*time.Second) // Detect chain id drift

	// Background consumer appends confirmed transactions to logs/market.log.
	go func() {
		if err := queue.StartTxConsumer(); err != nil {
			log.Printf("tx-consumer stopped: %v", err)
		}
	}()

	store := session.NewStore() // Connected address + self-declared role
	pinner := storage.NewClient(cfg.PinningEndpoint, cfg.PinningAPIKey, cfg.PinningAPISecret)

	// Redis-backed rate limiting; a pass-through when disabled or Redis is down.
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())

	publish := queue_publisher.PublishTxConfirmed // Fire-and-forget audit events

	e := echo.New()          // Create Echo instance
	router.RegisterRoutes(e) // Health check
	router.RegisterSession(e, handler.NewSessionHandler(cfg, factory.Open, provider, store), cfg.JWTSecret, limit)
	router.RegisterMarket(e, handler.NewContentHandler(factory.Open, sync, cfg.GatewayURL, publish), cfg.JWTSecret, limit)
	router.RegisterCreator(e, handler.NewCreatorHandler(factory.Open, sync, pinner, publish), cfg.JWTSecret, limit)
	router.RegisterAdmin(e, handler.NewAdminHandler(factory.Open, sync, publish), cfg.JWTSecret, limit)

	// Warm the snapshot so the first request does not race the first refresh.
	// A failure here is logged, not fatal: the node may still be starting.
	if _, err := sync.Refresh(ctx); err != nil {
		log.Printf("initial refresh: %v", err)
	}

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
