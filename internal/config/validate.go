package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Admin API token secret
	if len(c.Admin.JWTSecret) < 32 {
		errs = append(errs, "ADMIN_JWT_SECRET must be at least 32 characters")
	}

	// XMPP component secret
	if c.XMPP.ComponentSecret == "" {
		errs = append(errs, "XMPP_COMPONENT_SECRET is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}
	if c.XMPP.ComponentPort < 1 || c.XMPP.ComponentPort > 65535 {
		errs = append(errs, fmt.Sprintf("XMPP_COMPONENT_PORT must be 1-65535, got %d", c.XMPP.ComponentPort))
	}

	// Bot tunables
	if c.Bot.ContextWindow < 1 {
		errs = append(errs, fmt.Sprintf("BOT_CONTEXT_WINDOW must be positive, got %d", c.Bot.ContextWindow))
	}
	if c.Bot.ProactiveCooldown < 0 {
		errs = append(errs, "BOT_PROACTIVE_COOLDOWN must not be negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE must be 0-2, got %.2f", c.LLM.Temperature))
	}

	// LLM API key: warn only, the pipeline degrades to rule-based operation
	if !c.LLM.Configured() {
		slog.Warn("LLM_API_KEY is empty, classification and synthesis run in keyword-fallback mode")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
