package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/trademaster-labs/trademaster/internal/memory"
	"github.com/trademaster-labs/trademaster/internal/trades"
)

// ConversationResetter clears a user's in-process conversation window.
type ConversationResetter interface {
	ResetConversation(requesterID string) bool
}

// Handlers serves the admin API.
type Handlers struct {
	mem      *memory.Service
	trades   *trades.Service
	engine   ConversationResetter
	validate *validator.Validate
}

// NewHandlers creates the admin API handlers.
func NewHandlers(mem *memory.Service, tradeSvc *trades.Service, engine ConversationResetter) *Handlers {
	return &Handlers{
		mem:      mem,
		trades:   tradeSvc,
		engine:   engine,
		validate: validator.New(),
	}
}

// GetStats returns aggregate trade stats for a user.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	stats, err := h.trades.Stats(r.Context(), userID)
	if err != nil {
		slog.Error("loading stats", "user_id", userID, "error", err)
		HandleError(w, err)
		return
	}
	if stats == nil {
		HandleError(w, NewNotFoundError("no stats recorded for user"))
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"user_id":          stats.UserID,
		"total_trades":     stats.TotalTrades,
		"winning_trades":   stats.WinningTrades,
		"win_rate":         stats.WinRate(),
		"avg_profit_pct":   stats.AvgProfitPct,
		"largest_win_pct":  stats.LargestWinPct,
		"largest_loss_pct": stats.LargestLossPct,
		"updated_at":       stats.UpdatedAt,
	})
}

// ListTrades returns a user's most recent trades.
func (h *Handlers) ListTrades(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			HandleError(w, NewBadRequestError("limit must be between 1 and 200"))
			return
		}
		limit = parsed
	}

	list, err := h.trades.Recent(r.Context(), userID, limit)
	if err != nil {
		slog.Error("listing trades", "user_id", userID, "error", err)
		HandleError(w, err)
		return
	}
	JSON(w, http.StatusOK, list)
}

// ListMemories returns everything remembered about a user.
func (h *Handlers) ListMemories(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	entries, err := h.mem.Entries(r.Context(), userID)
	if err != nil {
		slog.Error("listing memories", "user_id", userID, "error", err)
		HandleError(w, err)
		return
	}
	JSON(w, http.StatusOK, entries)
}

type createMemoryRequest struct {
	Kind     string         `json:"kind" validate:"required,oneof=fact preference wallet_info"`
	Topic    string         `json:"topic" validate:"required,max=200"`
	Content  string         `json:"content" validate:"required,max=2000"`
	Metadata map[string]any `json:"metadata" validate:"omitempty,max=20"`
}

// CreateMemory stores a memory entry for a user.
func (h *Handlers) CreateMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		HandleError(w, ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		HandleError(w, NewBadRequestError(err.Error()))
		return
	}

	if err := h.mem.Remember(r.Context(), userID, req.Kind, req.Topic, req.Content, req.Metadata); err != nil {
		slog.Error("creating memory", "user_id", userID, "error", err)
		HandleError(w, err)
		return
	}
	JSONMessage(w, http.StatusCreated, "memory stored")
}

// DeleteMemories removes a user's memory entries. With a topic query
// parameter only matching entries go; without it, everything goes.
func (h *Handlers) DeleteMemories(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	topic := r.URL.Query().Get("topic")

	var (
		removed int64
		err     error
	)
	if topic != "" {
		removed, err = h.mem.ForgetTopic(r.Context(), userID, topic)
	} else {
		removed, err = h.mem.ForgetAll(r.Context(), userID)
	}
	if err != nil {
		slog.Error("deleting memories", "user_id", userID, "error", err)
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// ResetConversation clears a user's conversation window.
func (h *Handlers) ResetConversation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	had := h.engine.ResetConversation(userID)
	JSON(w, http.StatusOK, map[string]bool{"had_conversation": had})
}
