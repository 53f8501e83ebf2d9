package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/trademaster-labs/trademaster/internal/config"
	"github.com/trademaster-labs/trademaster/internal/conversation"
	"github.com/trademaster-labs/trademaster/internal/database"
	"github.com/trademaster-labs/trademaster/internal/gateway"
	"github.com/trademaster-labs/trademaster/internal/handlers"
	"github.com/trademaster-labs/trademaster/internal/httpapi"
	"github.com/trademaster-labs/trademaster/internal/intent"
	"github.com/trademaster-labs/trademaster/internal/llm"
	"github.com/trademaster-labs/trademaster/internal/memory"
	"github.com/trademaster-labs/trademaster/internal/middleware"
	inats "github.com/trademaster-labs/trademaster/internal/nats"
	"github.com/trademaster-labs/trademaster/internal/pricefeed"
	iredis "github.com/trademaster-labs/trademaster/internal/redis"
	"github.com/trademaster-labs/trademaster/internal/router"
	"github.com/trademaster-labs/trademaster/internal/server"
	"github.com/trademaster-labs/trademaster/internal/trades"
)

func main() {
	mintToken := flag.String("mint-token", "", "print a signed admin API token for the named operator and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if *mintToken != "" {
		// Token minting needs only the JWT secret, not the full runtime
		// config, so it skips Validate.
		if len(cfg.Admin.JWTSecret) < 32 {
			slog.Error("ADMIN_JWT_SECRET must be at least 32 characters")
			os.Exit(1)
		}
		token, err := httpapi.NewTokenManager(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiry).Generate(*mintToken)
		if err != nil {
			slog.Error("minting admin token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS
	natsClient, err := inats.NewClient(ctx, cfg.NATS)
	if err != nil {
		slog.Error("connecting to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	publisher := inats.NewPublisher(natsClient.JetStream())
	consumerMgr := inats.NewConsumerManager(natsClient.JetStream())

	// Services
	memSvc := memory.NewService(memory.NewPostgresRepository(pool))
	tradeSvc := trades.NewService(trades.NewPostgresRepository(pool))

	llmClient := llm.NewClient(cfg.LLM)
	feed := pricefeed.NewCachedFeed(
		pricefeed.NewHTTPFeed(cfg.PriceFeed.BaseURL, cfg.LLM.Timeout),
		redisClient, cfg.PriceFeed.CacheTTL,
	)

	registry := handlers.NewRegistry(
		handlers.NewWalletHandler(memSvc),
		handlers.NewMarketHandler(feed),
		handlers.NewCritiqueHandler(tradeSvc),
		handlers.NewGeneralHandler(),
	)

	engine := router.NewEngine(
		cfg.Bot,
		publisher,
		consumerMgr,
		conversation.NewStore(cfg.Bot.ContextWindow),
		memSvc,
		intent.NewClassifier(llmClient),
		registry,
		router.NewGate(llmClient),
		router.NewCooldown(cfg.Bot.ProactiveCooldown),
		router.NewSynthesizer(llmClient, cfg.LLM.MaxTokens),
	)

	go func() {
		if err := engine.Start(ctx); err != nil {
			slog.Error("engine stopped", "error", err)
			cancel()
		}
	}()

	// XMPP gateway
	xmppHandler := gateway.NewHandler(publisher, cfg.XMPP.BotName)
	component, err := gateway.NewComponent(cfg.XMPP, xmppHandler)
	if err != nil {
		slog.Error("creating XMPP component", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := component.Start(ctx); err != nil {
			slog.Error("XMPP component stopped", "error", err)
			cancel()
		}
	}()

	relay := gateway.NewOutboundRelay(xmppHandler, component.Sender(), consumerMgr, cfg.XMPP.ComponentName)
	go func() {
		if err := relay.Start(ctx); err != nil {
			slog.Error("outbound relay stopped", "error", err)
			cancel()
		}
	}()

	// Admin API
	tokens := httpapi.NewTokenManager(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiry)
	apiHandlers := httpapi.NewHandlers(memSvc, tradeSvc, engine)
	rateLimiter := middleware.NewRateLimiter(redisClient, cfg.Admin.RateLimit, 60)

	handler := httpapi.NewRouter(pool, natsClient, tokens, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AdminRateLimiter:   rateLimiter.Middleware,
	}, apiHandlers)

	srv := server.New(cfg.Server, handler)
	if err := srv.Start(cancel); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
