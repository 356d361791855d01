package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventDateLayout = "2006-01-02"
	EventTimeLayout = "15:04"
)

// Event is a scheduled announcement, stored in the 'events' table.
type Event struct {
	ID               string `db:"id"`
	GuildID          string `db:"guild_id"`
	Title            string `db:"title"`
	Date             string `db:"date"`     // YYYY-MM-DD
	Time             string `db:"time"`     // HH:MM
	Managers         string `db:"managers"` // JSON array of user ids
	Description      string `db:"description"`
	ReminderDaySent  bool   `db:"reminder_day_sent"`
	ReminderHourSent bool   `db:"reminder_hour_sent"`
	CreatedBy        string `db:"created_by"`
	CreatedAt        int64  `db:"created_at"`
}

// StartsAt returns the start of the event in loc.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(EventDateLayout+" "+EventTimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start for event %s: %w", e.ID, err)
	}
	return t, nil
}

// ManagerIDs decodes the managers column. A malformed column yields no managers.
func (e Event) ManagerIDs() []string {
	return decodeIDs(e.Managers)
}

// CanManage reports whether userID created the event or is listed as a manager.
func (e Event) CanManage(userID string) bool {
	if e.CreatedBy == userID {
		return true
	}
	for _, id := range e.ManagerIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// EncodeIDs serializes a list of ids for a JSON text column.
func EncodeIDs(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}
