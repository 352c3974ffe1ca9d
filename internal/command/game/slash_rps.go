package game

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
)

var rpsEmojis = []string{"✌️", "✊", "🤚"}

// rpsBeats maps each throw to the throw it defeats.
var rpsBeats = map[string]string{
	"✌️": "🤚",
	"✊": "✌️",
	"🤚": "✊",
}

const rpsTimeout = 5 * time.Second

// ReactionAwaiter is the one runtime capability the reaction games need.
type ReactionAwaiter interface {
	AwaitReaction(channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error)
}

type RPSCommand struct {
	Awaiter ReactionAwaiter
}

func (c *RPSCommand) Name() string        { return "rps" }
func (c *RPSCommand) Description() string { return "Play rock-paper-scissors against the bot" }
func (c *RPSCommand) Group() string       { return "game" }
func (c *RPSCommand) Category() string    { return "🎲 Gameplay" }

func (c *RPSCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *RPSCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	e := context.Event

	err := bot.RespondEmbed(s, e, &discordgo.MessageEmbed{
		Title:       "✌️ ✊ 🤚 Rock, Paper, Scissors",
		Description: fmt.Sprintf("React with your throw, <@%s>. You have 5 seconds.", e.Member.User.ID),
		Color:       bot.EmbedColor,
	})
	if err != nil {
		return fmt.Errorf("failed to respond: %w", err)
	}

	msg, err := s.InteractionResponse(e.Interaction)
	if err != nil {
		return fmt.Errorf("failed to fetch game message: %w", err)
	}

	go c.playRound(s, e, msg)
	return nil
}

func (c *RPSCommand) playRound(s *discordgo.Session, e *discordgo.InteractionCreate, msg *discordgo.Message) {
	for _, emoji := range rpsEmojis {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			log.Println("[WARN] Failed to add RPS reaction:", err)
		}
	}

	playerThrow, err := c.Awaiter.AwaitReaction(msg.ChannelID, msg.ID, e.Member.User.ID, rpsEmojis, rpsTimeout)
	if err != nil {
		c.finish(s, e, "⏱️ Too slow. The round is forfeit.")
		return
	}

	botThrow := rpsEmojis[rand.Intn(len(rpsEmojis))]

	var outcome string
	switch {
	case playerThrow == botThrow:
		outcome = "It's a draw."
	case rpsBeats[playerThrow] == botThrow:
		outcome = "You win! 🎉"
	default:
		outcome = "I win. 😈"
	}

	c.finish(s, e, fmt.Sprintf("You threw %s, I threw %s.\n\n**%s**", playerThrow, botThrow, outcome))
}

func (c *RPSCommand) finish(s *discordgo.Session, e *discordgo.InteractionCreate, text string) {
	embed := &discordgo.MessageEmbed{
		Title:       "✌️ ✊ 🤚 Rock, Paper, Scissors",
		Description: text,
		Color:       bot.EmbedColor,
	}
	if _, err := s.InteractionResponseEdit(e.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		log.Println("[WARN] Failed to edit RPS result:", err)
	}
}
