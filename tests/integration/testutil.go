//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trademaster-labs/trademaster/internal/config"
	"github.com/trademaster-labs/trademaster/internal/conversation"
	"github.com/trademaster-labs/trademaster/internal/handlers"
	"github.com/trademaster-labs/trademaster/internal/httpapi"
	"github.com/trademaster-labs/trademaster/internal/intent"
	"github.com/trademaster-labs/trademaster/internal/llm"
	"github.com/trademaster-labs/trademaster/internal/memory"
	"github.com/trademaster-labs/trademaster/internal/pricefeed"
	"github.com/trademaster-labs/trademaster/internal/router"
	"github.com/trademaster-labs/trademaster/internal/trades"
)

type TestEnv struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Server      *httptest.Server
	Tokens      *httpapi.TokenManager
	MemorySvc   *memory.Service
	TradeSvc    *trades.Service
	Engine      *router.Engine
}

var testEnv *TestEnv

// SetupTestEnv starts Postgres and Redis containers, runs migrations and
// wires the full service stack behind an httptest server. The LLM client
// is left unconfigured so every LLM-dependent stage runs in its degraded
// mode, which keeps the pipeline deterministic.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "trademaster_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	// Start Redis container
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/trademaster_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	// Run migrations
	m, err := migrate.New(
		fmt.Sprintf("file://%s", getMigrationsPath()),
		dsn,
	)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("running migrations: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	// Services
	memSvc := memory.NewService(memory.NewPostgresRepository(pool))
	tradeSvc := trades.NewService(trades.NewPostgresRepository(pool))

	// Unconfigured LLM: classifier falls back to rules, the gate stays
	// quiet on ambient messages, synthesis passes tool results through.
	llmClient := llm.NewClient(config.LLMConfig{Timeout: 5 * time.Second})

	feed := pricefeed.NewCachedFeed(
		pricefeed.NewHTTPFeed("http://127.0.0.1:1", time.Second),
		redisClient, time.Minute,
	)

	registry := handlers.NewRegistry(
		handlers.NewWalletHandler(memSvc),
		handlers.NewMarketHandler(feed),
		handlers.NewCritiqueHandler(tradeSvc),
		handlers.NewGeneralHandler(),
	)

	botCfg := config.BotConfig{
		Persona:           "You are TradeMaster, a trading assistant.",
		ContextWindow:     10,
		ProactiveCooldown: 600 * time.Second,
		StageTimeout:      5 * time.Second,
	}

	engine := router.NewEngine(
		botCfg,
		nil, nil,
		conversation.NewStore(botCfg.ContextWindow),
		memSvc,
		intent.NewClassifier(llmClient),
		registry,
		router.NewGate(llmClient),
		router.NewCooldown(botCfg.ProactiveCooldown),
		router.NewSynthesizer(llmClient, 500),
	)

	// Admin API
	tokens := httpapi.NewTokenManager("integration-test-secret-32-chars!", time.Hour)
	apiHandlers := httpapi.NewHandlers(memSvc, tradeSvc, engine)

	server := httptest.NewServer(httpapi.NewRouter(pool, nil, tokens, httpapi.RouterConfig{}, apiHandlers))
	t.Cleanup(func() { server.Close() })

	testEnv = &TestEnv{
		Pool:        pool,
		RedisClient: redisClient,
		Server:      server,
		Tokens:      tokens,
		MemorySvc:   memSvc,
		TradeSvc:    tradeSvc,
		Engine:      engine,
	}

	return testEnv
}

func getMigrationsPath() string {
	paths := []string{
		"../../migrations",
		"../../../migrations",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Fatal("migrations directory not found")
	return ""
}

// Helper functions

func AdminToken(t *testing.T, env *TestEnv) string {
	t.Helper()
	token, err := env.Tokens.Generate("integration")
	if err != nil {
		t.Fatalf("generating admin token: %v", err)
	}
	return token
}

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, token string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}

var _uniqueCounter int64

func uniqueID() int64 {
	_uniqueCounter++
	return _uniqueCounter
}
