package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// summaryKindLimit caps how many entries of each kind feed the summary.
const summaryKindLimit = 5

// Service builds prompt context from stored user memory.
type Service struct {
	repo Repository
}

// NewService creates a memory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Touch registers an interaction and returns the (possibly new) profile.
func (s *Service) Touch(ctx context.Context, userID, username string) (*UserProfile, error) {
	return s.repo.TouchProfile(ctx, userID, username)
}

// Remember stores one memory item for a user. metadata is optional
// free-form context kept alongside the content.
func (s *Service) Remember(ctx context.Context, userID, kind, topic, content string, metadata map[string]any) error {
	entry := &Entry{UserID: userID, Kind: kind, Topic: topic, Content: content, Metadata: metadata}
	return s.repo.UpsertEntry(ctx, entry)
}

// TrackWallet records a wallet address for a user.
func (s *Service) TrackWallet(ctx context.Context, userID, address, label string) error {
	return s.repo.AddWallet(ctx, &Wallet{UserID: userID, Address: address, Label: label})
}

// Wallets returns the user's tracked wallet addresses.
func (s *Service) Wallets(ctx context.Context, userID string) ([]Wallet, error) {
	return s.repo.ListWallets(ctx, userID)
}

// Entries returns everything remembered about a user.
func (s *Service) Entries(ctx context.Context, userID string) ([]Entry, error) {
	return s.repo.ListEntries(ctx, userID)
}

// ForgetTopic removes memory entries whose topic contains the given text.
func (s *Service) ForgetTopic(ctx context.Context, userID, topic string) (int64, error) {
	return s.repo.DeleteEntriesByTopic(ctx, userID, "%"+topic+"%")
}

// ForgetAll removes every memory entry for a user.
func (s *Service) ForgetAll(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteAllEntries(ctx, userID)
}

// LogTurn appends a user/assistant pair to the durable transcript.
// Failures are logged and swallowed; losing a transcript row must not
// fail the turn.
func (s *Service) LogTurn(ctx context.Context, userID, channelID, userText, assistantText string) {
	for _, e := range []*HistoryEntry{
		{UserID: userID, ChannelID: channelID, Role: "user", Content: userText},
		{UserID: userID, ChannelID: channelID, Role: "assistant", Content: assistantText},
	} {
		if err := s.repo.AppendHistory(ctx, e); err != nil {
			slog.Warn("logging conversation turn", "user_id", userID, "error", err)
			return
		}
	}
}

// LogChannelMessage records a message in the rolling channel context.
func (s *Service) LogChannelMessage(ctx context.Context, channelID, userID, username, content string) {
	msg := &ChannelMessage{ChannelID: channelID, UserID: userID, Username: username, Content: content}
	if err := s.repo.AppendChannelMessage(ctx, msg); err != nil {
		slog.Warn("logging channel message", "channel_id", channelID, "error", err)
	}
}

// ChannelContext returns the latest messages in a channel, oldest first.
func (s *Service) ChannelContext(ctx context.Context, channelID string, limit int) ([]ChannelMessage, error) {
	return s.repo.RecentChannelMessages(ctx, channelID, limit)
}

// Summary builds the memory block injected into the system prompt each
// turn: profile line, then up to five entries of each kind, then
// tracked wallets. Returns "" when nothing is known about the user.
func (s *Service) Summary(ctx context.Context, userID string) (string, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	if profile != nil {
		fmt.Fprintf(&b, "User %s, %d interactions, first seen %s.\n",
			profile.Username, profile.InteractionCount, profile.FirstSeen.Format("2006-01-02"))
	}

	for _, kind := range []string{KindFact, KindPreference, KindWalletInfo} {
		entries, err := s.repo.ListEntriesByKind(ctx, userID, kind)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			continue
		}
		if len(entries) > summaryKindLimit {
			entries = entries[:summaryKindLimit]
		}
		fmt.Fprintf(&b, "%s:\n", sectionTitle(kind))
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s: %s\n", e.Topic, e.Content)
		}
	}

	wallets, err := s.repo.ListWallets(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(wallets) > 0 {
		b.WriteString("Tracked wallets:\n")
		for _, w := range wallets {
			if w.Label != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", w.Address, w.Label)
			} else {
				fmt.Fprintf(&b, "- %s\n", w.Address)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}

func sectionTitle(kind string) string {
	switch kind {
	case KindFact:
		return "Known facts"
	case KindPreference:
		return "Preferences"
	case KindWalletInfo:
		return "Wallet notes"
	default:
		return kind
	}
}
