package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
	"github.com/keshon/server-jester/internal/music"
)

const (
	modalSearch        = "music_modal_search"
	modalSearchKeyword = "music_search_keyword"
	modalSearchLink    = "music_search_link"
	modalVolume        = "music_modal_volume"
	modalVolumeInput   = "music_volume_value"
)

// Component handles the panel's button row. Every control runs the
// connection acquisition policy first, the prompts included: a user outside
// voice gets the rejection notice, never a modal.
func (c *MusicCommand) Component(ctx *command.ComponentInteractionContext) error {
	s := ctx.Session
	e := ctx.Event
	customID := e.MessageComponentData().CustomID
	session := c.Bot.SessionFor(e.GuildID)
	user := identityFrom(e)

	if err := c.ensureVoiceFor(session, e.GuildID, e.Member.User.ID); err != nil {
		return bot.RespondEphemeral(s, e, voiceErrorText(err))
	}

	switch customID {
	case music.ControlSearch:
		return bot.RespondModal(s, e, searchModal())
	case music.ControlVolume:
		return bot.RespondModal(s, e, volumeModal(int(session.Snapshot().Volume*400)))
	}

	if err := bot.RespondDeferredUpdate(s, e); err != nil {
		return fmt.Errorf("failed to acknowledge component: %w", err)
	}

	switch customID {
	case music.ControlPlayPause:
		return session.TogglePlayPause(user)
	case music.ControlSkip:
		return session.Skip(user)
	case music.ControlRepeat:
		return session.CycleRepeat(user)
	default:
		return nil
	}
}

// ensureVoiceFor runs the connection acquisition policy for the acting user.
func (c *MusicCommand) ensureVoiceFor(session *music.Session, guildID, userID string) error {
	return session.EnsureVoice(c.Bot.FindUserVoiceState(guildID, userID))
}

func searchModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: modalSearch,
		Title:    "Search",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    modalSearchKeyword,
					Label:       "Song name",
					Style:       discordgo.TextInputShort,
					Placeholder: "keywords to search for",
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    modalSearchLink,
					Label:       "Link",
					Style:       discordgo.TextInputShort,
					Placeholder: "video or playlist link",
				},
			}},
		},
	}
}

func volumeModal(current int) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: modalVolume,
		Title:    "Volume",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: modalVolumeInput,
					Label:    "Volume (0-200)",
					Style:    discordgo.TextInputShort,
					Value:    fmt.Sprint(current),
					Required: true,
				},
			}},
		},
	}
}
