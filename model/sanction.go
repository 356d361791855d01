package model

import "time"

// SanctionType is the kind of moderation action taken against a member.
type SanctionType string

const (
	SanctionWarn SanctionType = "warn"
	SanctionMute SanctionType = "mute"
	SanctionBan  SanctionType = "ban"
	SanctionKick SanctionType = "kick"
)

// Valid reports whether t is one of the known sanction types.
func (t SanctionType) Valid() bool {
	switch t {
	case SanctionWarn, SanctionMute, SanctionBan, SanctionKick:
		return true
	}
	return false
}

// Sanction is one moderation record, stored in the 'sanctions' table.
type Sanction struct {
	ID          int64        `db:"id"`
	GuildID     string       `db:"guild_id"`
	UserID      string       `db:"user_id"`
	ModeratorID string       `db:"moderator_id"`
	Type        SanctionType `db:"type"`
	Reason      string       `db:"reason"`
	CreatedAt   int64        `db:"created_at"`
	ExpiresAt   int64        `db:"expires_at"` // 0 means the sanction never expires
	Active      bool         `db:"active"`
}

// Expired reports whether a timed sanction has run out at now.
func (s Sanction) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}

// ExpiresTime returns the expiry as a time, or the zero time if the sanction is permanent.
func (s Sanction) ExpiresTime() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0)
}
