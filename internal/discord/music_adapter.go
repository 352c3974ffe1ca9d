package discord

import (
	"github.com/keshon/server-jester/internal/music"
)

// SessionFor returns the guild's music session, creating it lazily with a
// dedicated voice box and the shared resolver.
func (b *Bot) SessionFor(guildID string) *music.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[guildID]; ok {
		return s
	}
	s := music.NewSession(guildID, b.resolver, NewVoiceBox(b.dg, guildID), &panelSender{dg: b.dg})
	b.sessions[guildID] = s
	return s
}

// Resolver exposes the shared track resolver for commands that need to search
// or classify outside of a session (the pick list, the search modal).
func (b *Bot) Resolver() *music.Resolver {
	return b.resolver
}

// FindUserVoiceState returns the voice channel the user currently sits in, or
// an empty string.
func (b *Bot) FindUserVoiceState(guildID, userID string) string {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}

// CloseSessions shuts down every live music session. Called on process exit.
func (b *Bot) CloseSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sessions {
		s.Close()
	}
	b.sessions = map[string]*music.Session{}
}
