package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
)

const (
	diceThrowID  = "dice_throw"
	diceTimeout  = 5 * time.Second
	diceGameText = "Press the button to throw the die. You have 5 seconds."
)

type diceGame struct {
	userID string
	timer  *time.Timer
}

// DiceCommand runs the button die game, or evaluates a dice formula like
// `2d6+1d4*2-3` when one is given.
type DiceCommand struct {
	mu      sync.Mutex
	pending map[string]*diceGame // keyed by game message ID
}

func NewDiceCommand() *DiceCommand {
	return &DiceCommand{pending: make(map[string]*diceGame)}
}

func (c *DiceCommand) Name() string        { return "dice" }
func (c *DiceCommand) Description() string { return "Throw a die, or roll a formula like `2d6+3`" }
func (c *DiceCommand) Group() string       { return "game" }
func (c *DiceCommand) Category() string    { return "🎲 Gameplay" }

func (c *DiceCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "formula",
				Description: "Supports `2d6+1d4*2-3` and similar math",
			},
		},
	}
}

func (c *DiceCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	e := context.Event

	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == "formula" && opt.StringValue() != "" {
			return c.runFormula(s, e, opt.StringValue())
		}
	}
	return c.runButtonGame(s, e)
}

func (c *DiceCommand) runButtonGame(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "🎲 Dice Throw",
				Description: diceGameText,
				Color:       bot.EmbedColor,
			}},
			Components: []discordgo.MessageComponent{diceButtonRow(false)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to respond: %w", err)
	}

	msg, err := s.InteractionResponse(e.Interaction)
	if err != nil {
		return fmt.Errorf("failed to fetch game message: %w", err)
	}

	game := &diceGame{userID: e.Member.User.ID}
	game.timer = time.AfterFunc(diceTimeout, func() { c.expire(s, msg) })

	c.mu.Lock()
	c.pending[msg.ID] = game
	c.mu.Unlock()
	return nil
}

// Component resolves a button press against the pending game for its message.
func (c *DiceCommand) Component(ctx *command.ComponentInteractionContext) error {
	s := ctx.Session
	e := ctx.Event
	if e.MessageComponentData().CustomID != diceThrowID || e.Message == nil {
		return nil
	}

	c.mu.Lock()
	game, ok := c.pending[e.Message.ID]
	if ok && game.userID != e.Member.User.ID {
		c.mu.Unlock()
		return bot.RespondEphemeral(s, e, "🎲 This die isn't yours.")
	}
	if ok {
		delete(c.pending, e.Message.ID)
		game.timer.Stop()
	}
	c.mu.Unlock()

	if !ok {
		// Stale button on an expired game.
		return bot.RespondDeferredUpdate(s, e)
	}

	roll := rand.Intn(6) + 1
	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "🎲 Dice Throw",
				Description: fmt.Sprintf("<@%s> rolled a **%d**!", game.userID, roll),
				Color:       bot.EmbedColor,
			}},
			Components: []discordgo.MessageComponent{diceButtonRow(true)},
		},
	})
}

// expire closes out a game nobody played in time.
func (c *DiceCommand) expire(s *discordgo.Session, msg *discordgo.Message) {
	c.mu.Lock()
	_, ok := c.pending[msg.ID]
	delete(c.pending, msg.ID)
	c.mu.Unlock()
	if !ok {
		return
	}

	embeds := []*discordgo.MessageEmbed{{
		Title:       "🎲 Dice Throw",
		Description: "⏱️ Too slow. The die stays cold.",
		Color:       bot.EmbedColor,
	}}
	components := []discordgo.MessageComponent{diceButtonRow(true)}
	if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    msg.ChannelID,
		ID:         msg.ID,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		log.Println("[WARN] Failed to expire dice game:", err)
	}
}

func diceButtonRow(disabled bool) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Style:    discordgo.SuccessButton,
			Emoji:    &discordgo.ComponentEmoji{Name: "🎲"},
			CustomID: diceThrowID,
			Disabled: disabled,
		},
	}}
}
