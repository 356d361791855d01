package sanctions

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

// ErrNotFound is returned when no sanction has the requested id.
var ErrNotFound = errors.New("sanction not found")

const schema = `CREATE TABLE IF NOT EXISTS sanctions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	moderator_id TEXT NOT NULL,
	type TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0,
	active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_sanctions_user ON sanctions (guild_id, user_id);
CREATE INDEX IF NOT EXISTS idx_sanctions_expiry ON sanctions (active, expires_at);`

// Columns added after the first release.
var migrations = []string{
	`ALTER TABLE sanctions ADD COLUMN expires_at INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE sanctions ADD COLUMN active INTEGER NOT NULL DEFAULT 1`,
}

// Store persists moderation sanctions.
type Store struct {
	db *sqlx.DB
}

// Open opens (and migrates) the sanctions database at path.
func Open(path string) (*Store, error) {
	db, err := database.Open(path, schema, migrations...)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Add inserts a sanction and returns its id.
func (s *Store) Add(ctx context.Context, sanction model.Sanction) (int64, error) {
	if !sanction.Type.Valid() {
		return 0, fmt.Errorf("unknown sanction type %q", sanction.Type)
	}
	if sanction.CreatedAt == 0 {
		sanction.CreatedAt = time.Now().Unix()
	}
	query := `INSERT INTO sanctions (guild_id, user_id, moderator_id, type, reason, created_at, expires_at, active)
			  VALUES (:guild_id, :user_id, :moderator_id, :type, :reason, :created_at, :expires_at, :active)`

	result, err := s.db.NamedExecContext(ctx, query, sanction)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sanction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// Get retrieves a single sanction by id.
func (s *Store) Get(ctx context.Context, id int64) (*model.Sanction, error) {
	var sanction model.Sanction
	err := s.db.GetContext(ctx, &sanction, "SELECT * FROM sanctions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sanction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sanction %d: %w", id, err)
	}
	return &sanction, nil
}

// ListByUser returns a member's sanctions, newest first.
func (s *Store) ListByUser(ctx context.Context, guildID, userID string, limit int) ([]model.Sanction, error) {
	if limit <= 0 {
		limit = 25
	}
	var records []model.Sanction
	query := "SELECT * FROM sanctions WHERE guild_id = ? AND user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?"
	if err := s.db.SelectContext(ctx, &records, query, guildID, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list sanctions for user %s: %w", userID, err)
	}
	return records, nil
}

// ActiveOfType returns the member's active sanctions of type t.
func (s *Store) ActiveOfType(ctx context.Context, guildID, userID string, t model.SanctionType) ([]model.Sanction, error) {
	var records []model.Sanction
	query := "SELECT * FROM sanctions WHERE guild_id = ? AND user_id = ? AND type = ? AND active = 1"
	if err := s.db.SelectContext(ctx, &records, query, guildID, userID, t); err != nil {
		return nil, fmt.Errorf("failed to list active %s sanctions for user %s: %w", t, userID, err)
	}
	return records, nil
}

// Expired returns active sanctions whose expiry is at or before now.
func (s *Store) Expired(ctx context.Context, now time.Time) ([]model.Sanction, error) {
	var records []model.Sanction
	query := "SELECT * FROM sanctions WHERE active = 1 AND expires_at > 0 AND expires_at <= ? ORDER BY expires_at"
	if err := s.db.SelectContext(ctx, &records, query, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to get expired sanctions: %w", err)
	}
	return records, nil
}

// Deactivate marks a sanction inactive. It reports false if it was already inactive.
func (s *Store) Deactivate(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE sanctions SET active = 0 WHERE id = ? AND active = 1", id)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate sanction %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for sanction %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// CountActive counts a member's active sanctions.
func (s *Store) CountActive(ctx context.Context, guildID, userID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM sanctions WHERE guild_id = ? AND user_id = ? AND active = 1"
	if err := s.db.GetContext(ctx, &count, query, guildID, userID); err != nil {
		return 0, fmt.Errorf("failed to count sanctions for user %s: %w", userID, err)
	}
	return count, nil
}
