package intent

import (
	"regexp"
	"strings"
)

var (
	walletAddressRe = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
	tradePriceRe    = regexp.MustCompile(`(?i)(?:at|for|price|from|to)\s+\$?[\d,]+(?:\.\d+)?`)
	tradeVerbRe     = regexp.MustCompile(`(?i)\b(bought|sold|traded|long|short)\b`)
	marketSymbolRe  = regexp.MustCompile(`(?i)\b(btc|eth|sol|bnb|xrp|ada|doge|dot|matic|avax|link|uni|atom|ltc|arb|op)\b`)
)

var marketKeywords = []string{
	"price", "chart", "market", "pump", "dump", "bull", "bear",
	"resistance", "support", "ath", "dip", "rally", "volume",
}

// classifyByRules applies keyword and shape rules in priority order.
// Returns General when nothing matches.
func classifyByRules(text string) Intent {
	if walletAddressRe.MatchString(text) {
		return Wallet
	}

	// A trade verb plus at least two price mentions reads like a
	// completed trade worth critiquing.
	if tradeVerbRe.MatchString(text) && len(tradePriceRe.FindAllString(text, 3)) >= 2 {
		return Critique
	}

	if marketSymbolRe.MatchString(text) {
		return Market
	}

	lower := strings.ToLower(text)
	for _, kw := range marketKeywords {
		if strings.Contains(lower, kw) {
			return Market
		}
	}

	return General
}
