package intent

// Intent is the closed set of message categories the dispatcher routes on.
type Intent string

const (
	Wallet   Intent = "wallet"
	Market   Intent = "market"
	Critique Intent = "critique"
	General  Intent = "general"
)

// Valid reports whether the string names a known intent.
func Valid(s string) bool {
	switch Intent(s) {
	case Wallet, Market, Critique, General:
		return true
	}
	return false
}

// Result is a classification outcome. Intent is always one of the four
// known values; Source records how it was produced.
type Result struct {
	Intent     Intent
	Confidence float64
	Source     string // "llm" or "fallback"
}
