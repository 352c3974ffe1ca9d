package discord

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrAwaitTimeout is returned when no matching reaction arrives in time.
var ErrAwaitTimeout = errors.New("timed out waiting for a reaction")

// AwaitReaction blocks until userID reacts to the given message with one of
// emojis, or the timeout elapses. Returns the emoji that was picked.
func (b *Bot) AwaitReaction(channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error) {
	wanted := make(map[string]bool, len(emojis))
	for _, e := range emojis {
		wanted[e] = true
	}

	picked := make(chan string, 1)
	remove := b.dg.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.ChannelID != channelID || r.MessageID != messageID || r.UserID != userID {
			return
		}
		if !wanted[r.Emoji.Name] {
			return
		}
		select {
		case picked <- r.Emoji.Name:
		default:
		}
	})
	defer remove()

	select {
	case emoji := <-picked:
		return emoji, nil
	case <-time.After(timeout):
		return "", ErrAwaitTimeout
	}
}
