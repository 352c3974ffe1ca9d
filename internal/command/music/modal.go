package music

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
	"github.com/keshon/server-jester/internal/music"
)

// ModalSubmit handles the search and volume modals opened from the panel.
func (c *MusicCommand) ModalSubmit(ctx *command.ModalSubmitContext) error {
	s := ctx.Session
	e := ctx.Event
	data := e.ModalSubmitData()
	session := c.Bot.SessionFor(e.GuildID)
	user := identityFrom(e)

	switch data.CustomID {
	case modalSearch:
		keyword := strings.TrimSpace(textInputValue(data, modalSearchKeyword))
		link := strings.TrimSpace(textInputValue(data, modalSearchLink))
		if keyword == "" && link == "" {
			return bot.RespondEphemeral(s, e, "🔍 Nothing to search for.")
		}

		// Both fields act when both are filled.
		var notices []string
		if link != "" {
			notice, _ := queueLink(session, link, user)
			notices = append(notices, notice)
		}
		if keyword != "" {
			notices = append(notices, fmt.Sprintf("🔍 Searching for `%s`...", keyword))
			go c.runPickList(s, e.ChannelID, e.Member.User.ID, user, session, keyword)
		}
		return bot.RespondEphemeral(s, e, strings.Join(notices, "\n"))

	case modalVolume:
		raw := strings.TrimSpace(textInputValue(data, modalVolumeInput))
		percent, err := strconv.Atoi(raw)
		if err != nil {
			return bot.RespondEphemeral(s, e, "🔊 Volume must be a number between 0 and 200.")
		}
		if err := session.SetVolumePercent(percent, user); err != nil {
			if errors.Is(err, music.ErrVolumeRange) {
				return bot.RespondEphemeral(s, e, "🔊 Volume must be between 0 and 200.")
			}
			return err
		}
		return bot.RespondDeferredUpdate(s, e)

	default:
		return nil
	}
}

// queueLink routes a submitted link to the collection or single-item path.
// The second return is false when the link isn't something the service can
// play.
func queueLink(session *music.Session, link string, user music.Identity) (string, bool) {
	kind, id := music.ClassifyURL(link)
	switch kind {
	case music.LinkCollection:
		session.EnqueueCollection(id, user)
		return "📜 Adding playlist to the queue...", true
	case music.LinkItem:
		session.EnqueueByID(id, user)
		return "🎵 Adding track to the queue...", true
	default:
		return "🔗 That link doesn't look like something I can play.", false
	}
}

// textInputValue digs a text input's value out of the modal's component tree.
func textInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
