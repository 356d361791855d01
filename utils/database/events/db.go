package events

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

// ErrNotFound is returned when no event has the requested id.
var ErrNotFound = errors.New("event not found")

const schema = `CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	guild_id TEXT NOT NULL,
	title TEXT NOT NULL,
	date TEXT NOT NULL,
	time TEXT NOT NULL,
	managers TEXT NOT NULL DEFAULT '[]',
	description TEXT NOT NULL DEFAULT '',
	reminder_day_sent INTEGER NOT NULL DEFAULT 0,
	reminder_hour_sent INTEGER NOT NULL DEFAULT 0,
	created_by TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_start ON events (date, time);`

var migrations = []string{
	`ALTER TABLE events ADD COLUMN reminder_day_sent INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE events ADD COLUMN reminder_hour_sent INTEGER NOT NULL DEFAULT 0`,
}

// Reminder identifies one of the two reminder flags.
type Reminder string

const (
	ReminderDay  Reminder = "reminder_day_sent"
	ReminderHour Reminder = "reminder_hour_sent"
)

// Store persists scheduled events.
type Store struct {
	db *sqlx.DB
}

// Open opens (and migrates) the events database at path.
func Open(path string) (*Store, error) {
	db, err := database.Open(path, schema, migrations...)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Create inserts a new event.
func (s *Store) Create(ctx context.Context, event model.Event) error {
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}
	if event.Managers == "" {
		event.Managers = "[]"
	}
	query := `INSERT INTO events (id, guild_id, title, date, time, managers, description, reminder_day_sent, reminder_hour_sent, created_by, created_at)
			  VALUES (:id, :guild_id, :title, :date, :time, :managers, :description, :reminder_day_sent, :reminder_hour_sent, :created_by, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Get retrieves one event by id.
func (s *Store) Get(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := s.db.GetContext(ctx, &event, "SELECT * FROM events WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return &event, nil
}

// ListUpcoming returns the guild's events starting on or after the given day, soonest first.
func (s *Store) ListUpcoming(ctx context.Context, guildID string, from time.Time) ([]model.Event, error) {
	var list []model.Event
	query := "SELECT * FROM events WHERE guild_id = ? AND date >= ? ORDER BY date, time"
	if err := s.db.SelectContext(ctx, &list, query, guildID, from.Format(model.EventDateLayout)); err != nil {
		return nil, fmt.Errorf("failed to list events for guild %s: %w", guildID, err)
	}
	return list, nil
}

// Pending returns every event that still has a reminder to send.
func (s *Store) Pending(ctx context.Context) ([]model.Event, error) {
	var list []model.Event
	query := "SELECT * FROM events WHERE reminder_day_sent = 0 OR reminder_hour_sent = 0 ORDER BY date, time"
	if err := s.db.SelectContext(ctx, &list, query); err != nil {
		return nil, fmt.Errorf("failed to list pending events: %w", err)
	}
	return list, nil
}

// MarkReminderSent sets one reminder flag.
func (s *Store) MarkReminderSent(ctx context.Context, id string, reminder Reminder) error {
	var query string
	switch reminder {
	case ReminderDay:
		query = "UPDATE events SET reminder_day_sent = 1 WHERE id = ?"
	case ReminderHour:
		query = "UPDATE events SET reminder_hour_sent = 1 WHERE id = ?"
	default:
		return fmt.Errorf("unknown reminder %q", reminder)
	}
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark %s for event %s: %w", reminder, id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an event.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for event %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteBefore removes events that started before the given day and returns how many were removed.
func (s *Store) DeleteBefore(ctx context.Context, day time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE date < ?", day.Format(model.EventDateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete past events: %w", err)
	}
	return result.RowsAffected()
}
