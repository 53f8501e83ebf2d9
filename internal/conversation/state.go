package conversation

import (
	"sync"

	"github.com/trademaster-labs/trademaster/internal/llm"
)

// Store keeps per-requester conversation windows in process memory.
// State is intentionally not persisted across restarts; the durable
// transcript lives in the conversation_history table.
type Store struct {
	mu     sync.Mutex
	states map[string]*state
	window int
}

// state holds one requester's prompt window. history[0] is always the
// system message; the remainder alternates user/assistant turns.
type state struct {
	mu      sync.Mutex
	history []llm.Message
}

// NewStore creates a Store keeping at most window user/assistant
// exchanges per requester, plus the system message.
func NewStore(window int) *Store {
	if window < 1 {
		window = 1
	}
	return &Store{
		states: make(map[string]*state),
		window: window,
	}
}

func (s *Store) get(requesterID string) *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[requesterID]
	if !ok {
		st = &state{history: []llm.Message{{Role: llm.RoleSystem}}}
		s.states[requesterID] = st
	}
	return st
}

// Refresh replaces the requester's system message and returns a copy of
// the full window. Called at the start of every turn so the system
// message always carries the current persona and memory summary.
func (s *Store) Refresh(requesterID, systemText string) []llm.Message {
	st := s.get(requesterID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.history[0] = llm.Message{Role: llm.RoleSystem, Content: systemText}

	out := make([]llm.Message, len(st.history))
	copy(out, st.history)
	return out
}

// History returns a copy of the requester's current window.
func (s *Store) History(requesterID string) []llm.Message {
	st := s.get(requesterID)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]llm.Message, len(st.history))
	copy(out, st.history)
	return out
}

// AppendExchange records one user/assistant pair as a single atomic
// operation, then evicts the oldest exchanges until at most window
// pairs remain after the system message.
func (s *Store) AppendExchange(requesterID, userText, assistantText string) {
	st := s.get(requesterID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.history = append(st.history,
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleAssistant, Content: assistantText},
	)

	max := 1 + 2*s.window
	if len(st.history) > max {
		keep := st.history[len(st.history)-2*s.window:]
		trimmed := make([]llm.Message, 0, max)
		trimmed = append(trimmed, st.history[0])
		trimmed = append(trimmed, keep...)
		st.history = trimmed
	}
}

// Reset drops all turns for the requester, keeping only the system
// message. It reports whether any turns existed before the reset.
func (s *Store) Reset(requesterID string) bool {
	st := s.get(requesterID)
	st.mu.Lock()
	defer st.mu.Unlock()

	had := len(st.history) > 1
	st.history = st.history[:1]
	return had
}
