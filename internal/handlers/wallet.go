package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/trademaster-labs/trademaster/internal/memory"
)

var walletAddressRe = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)

// WalletHandler tracks wallet addresses mentioned in messages and
// reports what is already tracked for the requester.
type WalletHandler struct {
	mem *memory.Service
}

// NewWalletHandler creates a wallet handler.
func NewWalletHandler(mem *memory.Service) *WalletHandler {
	return &WalletHandler{mem: mem}
}

func (h *WalletHandler) Process(ctx context.Context, text string, req Requester) (string, error) {
	addresses := dedupe(walletAddressRe.FindAllString(text, -1))

	var b strings.Builder

	for _, addr := range addresses {
		if err := h.mem.TrackWallet(ctx, req.ID, addr, ""); err != nil {
			return "", fmt.Errorf("tracking wallet %s: %w", shorten(addr), err)
		}
		if err := h.mem.Remember(ctx, req.ID, memory.KindWalletInfo, shorten(addr), "Asked to track wallet "+addr, map[string]any{"address": addr}); err != nil {
			return "", fmt.Errorf("remembering wallet %s: %w", shorten(addr), err)
		}
		fmt.Fprintf(&b, "Now tracking wallet %s for you.\n", shorten(addr))
	}

	wallets, err := h.mem.Wallets(ctx, req.ID)
	if err != nil {
		return "", fmt.Errorf("listing wallets: %w", err)
	}

	if len(addresses) == 0 {
		if len(wallets) == 0 {
			return "I'm not tracking any wallets for you yet. Drop an address (0x...) and I'll keep an eye on it.", nil
		}
		b.WriteString("Wallets I'm tracking for you:\n")
		for _, w := range wallets {
			fmt.Fprintf(&b, "- %s\n", shorten(w.Address))
		}
	} else {
		fmt.Fprintf(&b, "That's %d wallet(s) on your watchlist now.", len(wallets))
	}

	return strings.TrimSpace(b.String()), nil
}

func shorten(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
