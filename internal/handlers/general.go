package handlers

import (
	"context"
	"fmt"
	"strings"
)

// glossary answers "what is X" questions without burning an LLM call.
var glossary = map[string]string{
	"hodl":       "holding a position through volatility instead of selling. Born from a typo of \"hold\".",
	"fomo":       "fear of missing out. Buying because everyone else is, usually at the top.",
	"fud":        "fear, uncertainty and doubt. Negative noise meant to shake out holders.",
	"dca":        "dollar cost averaging. Buying a fixed amount on a schedule regardless of price.",
	"ath":        "all-time high. The highest price an asset has ever traded at.",
	"whale":      "an address or trader holding enough to move the market on their own.",
	"rug pull":   "developers draining a project's liquidity and disappearing with the funds.",
	"market cap": "price times circulating supply. A rough measure of an asset's size.",
	"leverage":   "trading with borrowed funds. Multiplies gains and losses alike.",
	"stop loss":  "an order that closes your position at a set price to cap the downside.",
	"liquidity":  "how easily an asset trades without moving its price.",
	"slippage":   "the gap between the price you expected and the price you got filled at.",
}

// GeneralHandler covers everything the specialized handlers don't.
// Glossary questions get a direct answer; for anything else it returns
// an empty result and lets the synthesizer answer from conversation
// context alone.
type GeneralHandler struct{}

// NewGeneralHandler creates a general handler.
func NewGeneralHandler() *GeneralHandler {
	return &GeneralHandler{}
}

func (h *GeneralHandler) Process(_ context.Context, text string, _ Requester) (string, error) {
	if def, ok := lookupGlossary(text); ok {
		return def, nil
	}
	return "", nil
}

// lookupGlossary matches "what is/what's/define <term>" questions
// against the glossary.
func lookupGlossary(text string) (string, bool) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "what is") && !strings.Contains(lower, "what's") &&
		!strings.Contains(lower, "whats") && !strings.Contains(lower, "define") {
		return "", false
	}
	for term, def := range glossary {
		if strings.Contains(lower, term) {
			return fmt.Sprintf("%s: %s", strings.ToUpper(term[:1])+term[1:], def), true
		}
	}
	return "", false
}
