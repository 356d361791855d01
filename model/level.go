package model

import "math"

// LevelRecord is a member's activity standing, stored in the 'levels' table.
type LevelRecord struct {
	GuildID      string `db:"guild_id"`
	UserID       string `db:"user_id"`
	XP           int64  `db:"xp"`
	Level        int    `db:"level"`
	Messages     int64  `db:"messages"`
	VoiceMinutes int64  `db:"voice_minutes"`
	UpdatedAt    int64  `db:"updated_at"`
}

// XPForLevel is the total experience needed to reach level: 100 * level^2.
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	l := int64(level)
	return 100 * l * l
}

// LevelForXP inverts XPForLevel, returning the highest level reached with xp.
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 0
	}
	level := int(math.Sqrt(float64(xp) / 100))
	// Correct float rounding at exact squares.
	for XPForLevel(level+1) <= xp {
		level++
	}
	for level > 0 && XPForLevel(level) > xp {
		level--
	}
	return level
}

// Progress returns the experience earned inside the current level and the span of that level.
func (r LevelRecord) Progress() (into, span int64) {
	current := XPForLevel(r.Level)
	next := XPForLevel(r.Level + 1)
	return r.XP - current, next - current
}
