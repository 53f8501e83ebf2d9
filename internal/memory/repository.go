package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// channelContextLimit is the number of recent messages kept per channel.
const channelContextLimit = 100

// Repository defines user memory persistence operations.
type Repository interface {
	TouchProfile(ctx context.Context, userID, username string) (*UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	UpsertEntry(ctx context.Context, entry *Entry) error
	ListEntries(ctx context.Context, userID string) ([]Entry, error)
	ListEntriesByKind(ctx context.Context, userID, kind string) ([]Entry, error)
	DeleteEntriesByTopic(ctx context.Context, userID, topicPattern string) (int64, error)
	DeleteAllEntries(ctx context.Context, userID string) (int64, error)

	AddWallet(ctx context.Context, wallet *Wallet) error
	ListWallets(ctx context.Context, userID string) ([]Wallet, error)

	AppendHistory(ctx context.Context, entry *HistoryEntry) error
	AppendChannelMessage(ctx context.Context, msg *ChannelMessage) error
	RecentChannelMessages(ctx context.Context, channelID string, limit int) ([]ChannelMessage, error)
}

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new memory repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// TouchProfile gets or creates the profile, bumps the interaction count
// and refreshes last_seen and username in one statement.
func (r *PostgresRepository) TouchProfile(ctx context.Context, userID, username string) (*UserProfile, error) {
	var p UserProfile
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_profiles (user_id, username, interaction_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id) DO UPDATE
		 SET username = EXCLUDED.username,
		     interaction_count = user_profiles.interaction_count + 1,
		     last_seen = now()
		 RETURNING user_id, username, interaction_count, first_seen, last_seen`,
		userID, username,
	).Scan(&p.UserID, &p.Username, &p.InteractionCount, &p.FirstSeen, &p.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("touching profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, username, interaction_count, first_seen, last_seen
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Username, &p.InteractionCount, &p.FirstSeen, &p.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// UpsertEntry stores a memory item, overwriting the content and metadata
// when the (user, kind, topic) triple already exists.
func (r *PostgresRepository) UpsertEntry(ctx context.Context, entry *Entry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO conversation_memory (user_id, kind, topic, content, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, kind, topic) DO UPDATE
		 SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, updated_at = now()
		 RETURNING id, created_at, updated_at`,
		entry.UserID, entry.Kind, entry.Topic, entry.Content, metadata,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting memory entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, kind, topic, content, metadata, created_at, updated_at
		 FROM conversation_memory
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing memory entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (r *PostgresRepository) ListEntriesByKind(ctx context.Context, userID, kind string) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, kind, topic, content, metadata, created_at, updated_at
		 FROM conversation_memory
		 WHERE user_id = $1 AND kind = $2
		 ORDER BY updated_at DESC`,
		userID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("listing memory entries by kind: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Topic, &e.Content, &e.Metadata, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning memory entry: %w", err)
		}
		if len(e.Metadata) == 0 {
			e.Metadata = nil
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntriesByTopic removes entries whose topic matches the pattern
// (SQL LIKE, caller supplies wildcards). Returns the number removed.
func (r *PostgresRepository) DeleteEntriesByTopic(ctx context.Context, userID, topicPattern string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM conversation_memory WHERE user_id = $1 AND topic ILIKE $2`,
		userID, topicPattern,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting memory entries by topic: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) DeleteAllEntries(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM conversation_memory WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting all memory entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// AddWallet tracks a wallet address. Re-adding an existing address
// updates its label instead of duplicating the row.
func (r *PostgresRepository) AddWallet(ctx context.Context, wallet *Wallet) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO user_wallets (user_id, address, label)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, address) DO UPDATE SET label = EXCLUDED.label
		 RETURNING id, created_at`,
		wallet.UserID, wallet.Address, wallet.Label,
	).Scan(&wallet.ID, &wallet.CreatedAt)
	if err != nil {
		return fmt.Errorf("adding wallet: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListWallets(ctx context.Context, userID string) ([]Wallet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, address, label, created_at
		 FROM user_wallets
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing wallets: %w", err)
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		var w Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Address, &w.Label, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (r *PostgresRepository) AppendHistory(ctx context.Context, entry *HistoryEntry) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO conversation_history (user_id, channel_id, role, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		entry.UserID, entry.ChannelID, entry.Role, entry.Content,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}

// AppendChannelMessage records a message in the per-channel context log
// and trims the log to the most recent entries.
func (r *PostgresRepository) AppendChannelMessage(ctx context.Context, msg *ChannelMessage) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO channel_context (channel_id, user_id, username, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		msg.ChannelID, msg.UserID, msg.Username, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending channel message: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`DELETE FROM channel_context
		 WHERE channel_id = $1 AND id NOT IN (
		     SELECT id FROM channel_context
		     WHERE channel_id = $1
		     ORDER BY id DESC
		     LIMIT $2
		 )`,
		msg.ChannelID, channelContextLimit,
	)
	if err != nil {
		return fmt.Errorf("trimming channel context: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecentChannelMessages(ctx context.Context, channelID string, limit int) ([]ChannelMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, channel_id, user_id, username, content, created_at
		 FROM (
		     SELECT id, channel_id, user_id, username, content, created_at
		     FROM channel_context
		     WHERE channel_id = $1
		     ORDER BY id DESC
		     LIMIT $2
		 ) recent
		 ORDER BY id`,
		channelID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing channel messages: %w", err)
	}
	defer rows.Close()

	var msgs []ChannelMessage
	for rows.Next() {
		var m ChannelMessage
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.UserID, &m.Username, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning channel message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
