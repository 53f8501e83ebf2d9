package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trademaster-labs/trademaster/internal/intent"
	"github.com/trademaster-labs/trademaster/internal/metrics"
)

// Requester identifies who sent the message being handled.
type Requester struct {
	ID   string
	Name string
}

// Handler produces a raw tool result for one intent. The result is
// later blended into a conversational reply by the synthesizer.
type Handler interface {
	Process(ctx context.Context, text string, req Requester) (string, error)
}

// apology is returned when a handler fails. The turn always produces
// something sendable.
const apology = "Sorry, I hit a snag working on that. Mind trying again in a moment?"

// Registry maps every intent to its handler.
type Registry struct {
	handlers map[intent.Intent]Handler
	general  Handler
}

// NewRegistry builds the full handler table. All four intents must be
// covered; a missing handler is a programming error.
func NewRegistry(wallet, market, critique, general Handler) *Registry {
	return &Registry{
		handlers: map[intent.Intent]Handler{
			intent.Wallet:   wallet,
			intent.Market:   market,
			intent.Critique: critique,
			intent.General:  general,
		},
		general: general,
	}
}

// Dispatch runs the handler for the intent and isolates failures: an
// unknown intent routes to general, and both errors and panics turn
// into an apologetic fallback instead of crashing the turn.
func (r *Registry) Dispatch(ctx context.Context, in intent.Intent, text string, req Requester) (result string) {
	h, ok := r.handlers[in]
	if !ok {
		h = r.general
		in = intent.General
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("handler panicked", "intent", in, "requester_id", req.ID, "panic", fmt.Sprint(rec))
			metrics.HandlerErrorsTotal.WithLabelValues(string(in)).Inc()
			result = apology
		}
	}()

	out, err := h.Process(ctx, text, req)
	if err != nil {
		slog.Warn("handler failed", "intent", in, "requester_id", req.ID, "error", err)
		metrics.HandlerErrorsTotal.WithLabelValues(string(in)).Inc()
		return apology
	}
	return out
}
