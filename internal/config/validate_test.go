package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB:     DBConfig{Host: "localhost", Port: 5432, User: "tm", Password: "secret", Name: "tm", SSLMode: "disable"},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		XMPP:   XMPPConfig{ComponentName: "tm.local", ComponentSecret: "shh", ComponentHost: "localhost", ComponentPort: 5347},
		LLM:    LLMConfig{APIKey: "gsk_test", Temperature: 0.7},
		Bot:    BotConfig{ContextWindow: 10, ProactiveCooldown: 10 * time.Minute},
		Admin:  AdminConfig{JWTSecret: "0123456789abcdef0123456789abcdef"},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingDBPassword(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.JWTSecret = "short"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_JWT_SECRET")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	cfg.XMPP.ComponentSecret = ""
	cfg.Server.Port = 0
	cfg.Bot.ContextWindow = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "XMPP_COMPONENT_SECRET")
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "BOT_CONTEXT_WINDOW")
}

func TestValidate_TemperatureRange(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Temperature = 3.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_TEMPERATURE")
}
