package music

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
	"github.com/keshon/server-jester/internal/music"
)

// Bot is what the music command needs from the runtime.
type Bot interface {
	SessionFor(guildID string) *music.Session
	Resolver() *music.Resolver
	FindUserVoiceState(guildID, userID string) string
	AwaitReaction(channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error)
}

type MusicCommand struct {
	Bot Bot
}

func (c *MusicCommand) Name() string        { return "music" }
func (c *MusicCommand) Description() string { return "Control music playback" }
func (c *MusicCommand) Group() string       { return "music" }
func (c *MusicCommand) Category() string    { return "🎵 Music" }

func (c *MusicCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "panel",
				Description: "Open the player panel in this channel",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "play",
				Description: "Queue a track and start playing",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "input",
						Description: "Link or search query",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "next",
				Description: "Skip to the next track",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stop",
				Description: "Stop playback, clear the queue and leave",
			},
		},
	}
}

func (c *MusicCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	e := context.Event

	if len(e.ApplicationCommandData().Options) == 0 {
		return bot.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Description: "Missing subcommand.",
		})
	}

	sub := e.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "panel":
		return c.runPanel(s, e)

	case "play":
		var input string
		for _, opt := range sub.Options {
			if opt.Name == "input" {
				input = opt.StringValue()
			}
		}
		return c.runPlay(s, e, input)

	case "next":
		return c.runNext(s, e)

	case "stop":
		return c.runStop(s, e)

	default:
		return bot.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Unknown subcommand: %s", sub.Name),
		})
	}
}

func (c *MusicCommand) runPanel(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.SessionFor(e.GuildID)
	if err := session.OpenPanel(e.ChannelID, identityFrom(e)); err != nil {
		return bot.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Title:       "🎵 Panel Error",
			Description: fmt.Sprintf("%v", err),
		})
	}
	return bot.RespondEphemeral(s, e, "🎛️ Player panel opened.")
}

func (c *MusicCommand) runPlay(s *discordgo.Session, e *discordgo.InteractionCreate, input string) error {
	if err := bot.RespondDeferred(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	guildID := e.GuildID
	user := identityFrom(e)
	session := c.Bot.SessionFor(guildID)

	voiceChannelID := c.Bot.FindUserVoiceState(guildID, e.Member.User.ID)
	if err := session.EnsureVoice(voiceChannelID); err != nil {
		return bot.FollowupEphemeral(s, e, voiceErrorText(err))
	}

	kind, id := music.ClassifyURL(input)
	switch kind {
	case music.LinkCollection:
		session.EnqueueCollectionAndPlay(id, user)
		c.ensurePanel(session, e.ChannelID, user)
		return bot.FollowupEphemeral(s, e, "📜 Adding playlist to the queue...")

	case music.LinkItem:
		// fall through to the synchronous resolve below

	default:
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		candidates, err := c.Bot.Resolver().ResolveByQuery(ctx, input)
		if err != nil || len(candidates) == 0 {
			return bot.FollowupEphemeral(s, e, fmt.Sprintf("🔍 Nothing found for `%s`.", input))
		}
		id = candidates[0].ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	track, err := c.Bot.Resolver().ResolveByID(ctx, id)
	if err != nil {
		return bot.FollowupEphemeral(s, e, fmt.Sprintf("🎵 Failed to resolve track: %v", err))
	}

	wasEmpty := session.EnqueueTrack(*track, user)
	c.ensurePanel(session, e.ChannelID, user)
	if wasEmpty && session.Snapshot().State == music.StateIdle {
		_ = session.TogglePlayPause(user)
	}
	return bot.FollowupEphemeral(s, e, fmt.Sprintf("🎵 Queued **%s**.", track.Title))
}

func (c *MusicCommand) runNext(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.SessionFor(e.GuildID)
	if err := session.Skip(identityFrom(e)); err != nil {
		return bot.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("%v", err),
		})
	}
	return bot.RespondEphemeral(s, e, "⏭️ Skipped.")
}

func (c *MusicCommand) runStop(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	session := c.Bot.SessionFor(e.GuildID)
	if err := session.Stop(identityFrom(e)); err != nil {
		return bot.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("%v", err),
		})
	}
	return bot.RespondEphemeral(s, e, "⏹️ Stopped and cleared the queue.")
}

// ensurePanel opens the panel in channelID unless the guild already has one.
func (c *MusicCommand) ensurePanel(session *music.Session, channelID string, user music.Identity) {
	if _, ok := session.PanelChannel(); !ok {
		_ = session.OpenPanel(channelID, user)
	}
}

func identityFrom(e *discordgo.InteractionCreate) music.Identity {
	if e.Member != nil && e.Member.User != nil {
		return music.Identity{
			Name:      e.Member.User.Username,
			AvatarURL: e.Member.User.AvatarURL(""),
		}
	}
	return music.Identity{}
}

func voiceErrorText(err error) string {
	switch err {
	case music.ErrNotInVoice:
		return "🎵 Join a voice channel first."
	case music.ErrChannelBusy:
		return "🎵 Already playing in another voice channel."
	default:
		return fmt.Sprintf("🎵 Voice error: %v", err)
	}
}
