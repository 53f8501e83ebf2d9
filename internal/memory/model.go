package memory

import "time"

// Memory kinds stored in conversation_memory.
const (
	KindFact       = "fact"
	KindPreference = "preference"
	KindWalletInfo = "wallet_info"
)

// UserProfile is the per-user identity row.
type UserProfile struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	InteractionCount int64     `json:"interaction_count"`
	FirstSeen        time.Time `json:"first_seen"`
	LastSeen         time.Time `json:"last_seen"`
}

// Entry is one remembered item about a user. The (UserID, Kind, Topic)
// triple is unique; storing the same topic again overwrites the content
// and metadata.
type Entry struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Kind      string         `json:"kind"`
	Topic     string         `json:"topic"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Wallet is a tracked blockchain address for a user.
type Wallet struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Address   string    `json:"address"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry is one durable transcript row.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelMessage is one row of the rolling per-channel context log.
type ChannelMessage struct {
	ID        int64     `json:"id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
