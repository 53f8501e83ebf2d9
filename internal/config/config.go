package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	XMPP      XMPPConfig
	LLM       LLMConfig
	Bot       BotConfig
	PriceFeed PriceFeedConfig
	Admin     AdminConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	URL string
}

type XMPPConfig struct {
	ComponentName   string
	ComponentSecret string
	ComponentHost   string
	ComponentPort   int
	BotName         string
}

func (c XMPPConfig) ComponentAddr() string {
	return fmt.Sprintf("%s:%d", c.ComponentHost, c.ComponentPort)
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Configured reports whether an LLM backend is usable. Without an API key
// every LLM-dependent stage runs in its documented degraded mode.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

type BotConfig struct {
	Persona           string
	ContextWindow     int
	ProactiveCooldown time.Duration
	StageTimeout      time.Duration
}

type PriceFeedConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

type AdminConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	RateLimit   int
}

type LogConfig struct {
	Level  string
	Format string
}

const defaultPersona = "You are TradeMaster, an AI assistant for a trading community. " +
	"You help with wallet tracking, market analysis, trade critique, and trading knowledge. " +
	"Be concise, emphasize risk management, and avoid specific price predictions."

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               k.String("server.host"),
			Port:               k.Int("server.port"),
			CORSAllowedOrigins: splitList(k.String("server.cors.origins")),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		XMPP: XMPPConfig{
			ComponentName:   k.String("xmpp.component.name"),
			ComponentSecret: k.String("xmpp.component.secret"),
			ComponentHost:   k.String("xmpp.component.host"),
			ComponentPort:   k.Int("xmpp.component.port"),
			BotName:         k.String("xmpp.bot.name"),
		},
		LLM: LLMConfig{
			APIKey:      k.String("llm.api.key"),
			BaseURL:     k.String("llm.base.url"),
			Model:       k.String("llm.model"),
			Temperature: float32(k.Float64("llm.temperature")),
			MaxTokens:   k.Int("llm.max.tokens"),
		},
		Bot: BotConfig{
			Persona:       k.String("bot.persona"),
			ContextWindow: k.Int("bot.context.window"),
		},
		PriceFeed: PriceFeedConfig{
			BaseURL: k.String("pricefeed.base.url"),
		},
		Admin: AdminConfig{
			JWTSecret: k.String("admin.jwt.secret"),
			RateLimit: k.Int("admin.rate.limit"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "trademaster"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "trademaster"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.XMPP.ComponentName == "" {
		cfg.XMPP.ComponentName = "trademaster.localhost"
	}
	if cfg.XMPP.ComponentHost == "" {
		cfg.XMPP.ComponentHost = "localhost"
	}
	if cfg.XMPP.ComponentPort == 0 {
		cfg.XMPP.ComponentPort = 5347
	}
	if cfg.XMPP.BotName == "" {
		cfg.XMPP.BotName = "trademaster"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3-70b-8192"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.Bot.Persona == "" {
		cfg.Bot.Persona = defaultPersona
	}
	if cfg.Bot.ContextWindow == 0 {
		cfg.Bot.ContextWindow = 10
	}
	if cfg.PriceFeed.BaseURL == "" {
		cfg.PriceFeed.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Admin.RateLimit == 0 {
		cfg.Admin.RateLimit = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.LLM.Timeout, err = parseDuration(k, "llm.timeout", "30s")
	if err != nil {
		return nil, err
	}
	cfg.Bot.ProactiveCooldown, err = parseDuration(k, "bot.proactive.cooldown", "600s")
	if err != nil {
		return nil, err
	}
	cfg.Bot.StageTimeout, err = parseDuration(k, "bot.stage.timeout", "45s")
	if err != nil {
		return nil, err
	}
	cfg.PriceFeed.CacheTTL, err = parseDuration(k, "pricefeed.cache.ttl", "300s")
	if err != nil {
		return nil, err
	}
	cfg.Admin.TokenExpiry, err = parseDuration(k, "admin.token.expiry", "24h")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDuration(k *koanf.Koanf, key, fallback string) (time.Duration, error) {
	s := k.String(key)
	if s == "" {
		s = fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
