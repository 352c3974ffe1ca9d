package classifier

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/classifier"
	"github.com/keshon/server-jester/internal/command"
	"github.com/keshon/server-jester/internal/music"
)

// PanelOpener lets the classifier open the music panel when a message reads
// like a music request.
type PanelOpener interface {
	SessionFor(guildID string) *music.Session
}

// ClassifierCommand toggles per-guild message classification and, while
// enabled, listens to every guild message and nudges people toward the
// feature the scoring endpoint thinks they want.
type ClassifierCommand struct {
	Client *classifier.Client
	Panels PanelOpener
}

func (c *ClassifierCommand) Name() string        { return "classifier" }
func (c *ClassifierCommand) Description() string { return "Toggle the message classifier" }
func (c *ClassifierCommand) Group() string       { return "classifier" }
func (c *ClassifierCommand) Category() string    { return "🧠 Smarts" }

func (c *ClassifierCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "state",
				Description: "Turn message classification on or off",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "on", Value: "on"},
					{Name: "off", Value: "off"},
				},
			},
		},
	}
}

func (c *ClassifierCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	e := context.Event

	state := ""
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == "state" {
			state = opt.StringValue()
		}
	}

	enabled := state == "on"
	if enabled && c.Client == nil {
		return bot.RespondEphemeral(s, e, "🧠 No classifier endpoint is configured.")
	}
	if err := context.Storage.SetClassifierEnabled(e.GuildID, enabled); err != nil {
		return fmt.Errorf("failed to persist classifier state: %w", err)
	}

	if enabled {
		return bot.RespondEphemeral(s, e, "🧠 Classifier is on. I'm listening.")
	}
	return bot.RespondEphemeral(s, e, "🧠 Classifier is off.")
}

// Message scores one guild message. Failures are silent; a chat bot that
// apologizes for its own plumbing is worse than one that stays quiet.
func (c *ClassifierCommand) Message(mctx *command.MessageContext) error {
	if c.Client == nil || mctx.Event.Content == "" {
		return nil
	}

	enabled, err := mctx.Storage.ClassifierEnabled(mctx.Event.GuildID)
	if err != nil || !enabled {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	label, err := c.Client.Classify(ctx, mctx.Event.Content)
	if err != nil {
		log.Println("[WARN] Classifier call failed:", err)
		return nil
	}

	m := mctx.Event
	switch label {
	case classifier.LabelRPS:
		c.reply(mctx, "Feeling lucky? Try `/rps` for a round of rock-paper-scissors.")
	case classifier.LabelDice:
		c.reply(mctx, "Sounds like a job for `/dice`.")
	case classifier.LabelMusic:
		if c.Panels != nil {
			session := c.Panels.SessionFor(m.GuildID)
			if err := session.OpenPanel(m.ChannelID, music.Identity{
				Name:      m.Author.Username,
				AvatarURL: m.Author.AvatarURL(""),
			}); err != nil {
				log.Println("[WARN] Classifier failed to open music panel:", err)
			}
		}
	case classifier.LabelWarn:
		c.reply(mctx, "If someone's misbehaving, `/warn` keeps score.")
	}
	return nil
}

func (c *ClassifierCommand) reply(mctx *command.MessageContext, text string) {
	_, err := mctx.Session.ChannelMessageSendReply(mctx.Event.ChannelID, text, mctx.Event.Reference())
	if err != nil {
		log.Println("[WARN] Classifier reply failed:", err)
	}
}
