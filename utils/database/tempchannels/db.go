package tempchannels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"community-bot/model"
	"community-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a channel is not a tracked temporary channel.
var ErrNotFound = errors.New("temporary channel not found")

const schema = `CREATE TABLE IF NOT EXISTS temp_channels (
	channel_id TEXT PRIMARY KEY,
	guild_id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	visibility TEXT NOT NULL DEFAULT 'public',
	whitelist TEXT NOT NULL DEFAULT '[]',
	blacklist TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_temp_channels_owner ON temp_channels (guild_id, owner_id);`

var migrations = []string{
	`ALTER TABLE temp_channels ADD COLUMN whitelist TEXT NOT NULL DEFAULT '[]'`,
	`ALTER TABLE temp_channels ADD COLUMN blacklist TEXT NOT NULL DEFAULT '[]'`,
}

// Store persists temporary voice channels.
type Store struct {
	db *sqlx.DB
}

// Open opens (and migrates) the temporary channel database at path.
func Open(path string) (*Store, error) {
	db, err := database.Open(path, schema, migrations...)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save inserts or replaces a channel record.
func (s *Store) Save(ctx context.Context, ch model.TemporaryChannel) error {
	if ch.CreatedAt == 0 {
		ch.CreatedAt = time.Now().Unix()
	}
	if ch.Visibility == "" {
		ch.Visibility = model.VisibilityPublic
	}
	if ch.Whitelist == "" {
		ch.Whitelist = "[]"
	}
	if ch.Blacklist == "" {
		ch.Blacklist = "[]"
	}
	query := `INSERT INTO temp_channels (channel_id, guild_id, owner_id, visibility, whitelist, blacklist, created_at)
			  VALUES (:channel_id, :guild_id, :owner_id, :visibility, :whitelist, :blacklist, :created_at)
			  ON CONFLICT(channel_id) DO UPDATE SET
			      owner_id = excluded.owner_id,
			      visibility = excluded.visibility,
			      whitelist = excluded.whitelist,
			      blacklist = excluded.blacklist`
	if _, err := s.db.NamedExecContext(ctx, query, ch); err != nil {
		return fmt.Errorf("failed to save temp channel %s: %w", ch.ChannelID, err)
	}
	return nil
}

// Get retrieves a tracked channel.
func (s *Store) Get(ctx context.Context, channelID string) (*model.TemporaryChannel, error) {
	var ch model.TemporaryChannel
	err := s.db.GetContext(ctx, &ch, "SELECT * FROM temp_channels WHERE channel_id = ?", channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get temp channel %s: %w", channelID, err)
	}
	return &ch, nil
}

// ByOwner returns the channel owned by ownerID, if any.
func (s *Store) ByOwner(ctx context.Context, guildID, ownerID string) (*model.TemporaryChannel, error) {
	var ch model.TemporaryChannel
	query := "SELECT * FROM temp_channels WHERE guild_id = ? AND owner_id = ? ORDER BY created_at DESC LIMIT 1"
	err := s.db.GetContext(ctx, &ch, query, guildID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get temp channel for owner %s: %w", ownerID, err)
	}
	return &ch, nil
}

// List returns every tracked channel.
func (s *Store) List(ctx context.Context) ([]model.TemporaryChannel, error) {
	var list []model.TemporaryChannel
	if err := s.db.SelectContext(ctx, &list, "SELECT * FROM temp_channels ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("failed to list temp channels: %w", err)
	}
	return list, nil
}

// Delete forgets a channel. Deleting an unknown channel is not an error.
func (s *Store) Delete(ctx context.Context, channelID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM temp_channels WHERE channel_id = ?", channelID); err != nil {
		return fmt.Errorf("failed to delete temp channel %s: %w", channelID, err)
	}
	return nil
}
