package model

// Visibility of a temporary voice channel.
type Visibility string

const (
	VisibilityPublic Visibility = "public"
	VisibilityLocked Visibility = "locked" // visible, but only permitted members may join
	VisibilityHidden Visibility = "hidden"
)

// Valid reports whether v is a known visibility mode.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityLocked, VisibilityHidden:
		return true
	}
	return false
}

// TemporaryChannel is a member-owned voice channel, stored in the 'temp_channels' table.
type TemporaryChannel struct {
	ChannelID  string     `db:"channel_id"`
	GuildID    string     `db:"guild_id"`
	OwnerID    string     `db:"owner_id"`
	Visibility Visibility `db:"visibility"`
	Whitelist  string     `db:"whitelist"` // JSON array of user ids
	Blacklist  string     `db:"blacklist"` // JSON array of user ids
	CreatedAt  int64      `db:"created_at"`
}

func (c TemporaryChannel) Permitted() []string { return decodeIDs(c.Whitelist) }

func (c TemporaryChannel) Rejected() []string { return decodeIDs(c.Blacklist) }

// Permit moves userID onto the whitelist, removing it from the blacklist.
func (c *TemporaryChannel) Permit(userID string) {
	c.Whitelist = EncodeIDs(appendUnique(c.Permitted(), userID))
	c.Blacklist = EncodeIDs(remove(c.Rejected(), userID))
}

// Reject moves userID onto the blacklist, removing it from the whitelist.
func (c *TemporaryChannel) Reject(userID string) {
	c.Blacklist = EncodeIDs(appendUnique(c.Rejected(), userID))
	c.Whitelist = EncodeIDs(remove(c.Permitted(), userID))
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
