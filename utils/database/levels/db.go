package levels

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

const schema = `CREATE TABLE IF NOT EXISTS levels (
	guild_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	xp INTEGER NOT NULL DEFAULT 0,
	level INTEGER NOT NULL DEFAULT 0,
	messages INTEGER NOT NULL DEFAULT 0,
	voice_minutes INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (guild_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_levels_xp ON levels (guild_id, xp DESC);`

var migrations = []string{
	`ALTER TABLE levels ADD COLUMN voice_minutes INTEGER NOT NULL DEFAULT 0`,
}

// Activity is one batch of experience to credit to a member.
type Activity struct {
	XP           int64
	Messages     int64
	VoiceMinutes int64
}

// Store persists member levels.
type Store struct {
	db *sqlx.DB
}

// Open opens (and migrates) the levels database at path.
func Open(path string) (*Store, error) {
	db, err := database.Open(path, schema, migrations...)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns a member's record. Members without activity get a zero record.
func (s *Store) Get(ctx context.Context, guildID, userID string) (model.LevelRecord, error) {
	record, err := get(ctx, s.db, guildID, userID)
	if err != nil {
		return model.LevelRecord{}, fmt.Errorf("failed to get level for user %s: %w", userID, err)
	}
	return record, nil
}

// Credit adds activity to a member and recalculates the level from the curve.
// It returns the record before and after the update.
func (s *Store) Credit(ctx context.Context, guildID, userID string, a Activity, now time.Time) (before, after model.LevelRecord, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return before, after, fmt.Errorf("failed to begin level update: %w", err)
	}
	defer tx.Rollback()

	before, err = get(ctx, tx, guildID, userID)
	if err != nil {
		return before, after, fmt.Errorf("failed to read level for user %s: %w", userID, err)
	}

	after = before
	after.XP += a.XP
	if after.XP < 0 {
		after.XP = 0
	}
	after.Messages += a.Messages
	after.VoiceMinutes += a.VoiceMinutes
	after.Level = model.LevelForXP(after.XP)
	after.UpdatedAt = now.Unix()

	query := `INSERT INTO levels (guild_id, user_id, xp, level, messages, voice_minutes, updated_at)
			  VALUES (:guild_id, :user_id, :xp, :level, :messages, :voice_minutes, :updated_at)
			  ON CONFLICT(guild_id, user_id) DO UPDATE SET
			      xp = excluded.xp,
			      level = excluded.level,
			      messages = excluded.messages,
			      voice_minutes = excluded.voice_minutes,
			      updated_at = excluded.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, after); err != nil {
		return before, after, fmt.Errorf("failed to save level for user %s: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return before, after, fmt.Errorf("failed to commit level for user %s: %w", userID, err)
	}
	return before, after, nil
}

// Top returns the guild's highest-xp members.
func (s *Store) Top(ctx context.Context, guildID string, limit int) ([]model.LevelRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var list []model.LevelRecord
	query := "SELECT * FROM levels WHERE guild_id = ? ORDER BY xp DESC, updated_at ASC LIMIT ?"
	if err := s.db.SelectContext(ctx, &list, query, guildID, limit); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %s: %w", guildID, err)
	}
	return list, nil
}

// Rank returns the member's 1-based leaderboard position, or 0 if they have no xp.
func (s *Store) Rank(ctx context.Context, guildID, userID string) (int, error) {
	record, err := s.Get(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	if record.XP == 0 {
		return 0, nil
	}
	var ahead int
	query := "SELECT COUNT(*) FROM levels WHERE guild_id = ? AND xp > ?"
	if err := s.db.GetContext(ctx, &ahead, query, guildID, record.XP); err != nil {
		return 0, fmt.Errorf("failed to rank user %s: %w", userID, err)
	}
	return ahead + 1, nil
}

func get(ctx context.Context, q sqlx.QueryerContext, guildID, userID string) (model.LevelRecord, error) {
	var record model.LevelRecord
	err := sqlx.GetContext(ctx, q, &record, "SELECT * FROM levels WHERE guild_id = ? AND user_id = ?", guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LevelRecord{GuildID: guildID, UserID: userID}, nil
	}
	return record, err
}
