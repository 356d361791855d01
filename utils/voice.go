package utils

import "github.com/bwmarrin/discordgo"

// VoiceOccupants counts the members connected to channelID according to the
// state cache. ok is false when the guild is not cached yet.
func VoiceOccupants(s *discordgo.Session, guildID, channelID string) (n int, ok bool) {
	if s.State == nil {
		return 0, false
	}
	s.State.RLock()
	defer s.State.RUnlock()

	for _, g := range s.State.Guilds {
		if g.ID != guildID {
			continue
		}
		for _, vs := range g.VoiceStates {
			if vs.ChannelID == channelID {
				n++
			}
		}
		return n, true
	}
	return 0, false
}
