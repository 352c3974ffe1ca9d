package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Group() string       { return "core" }
func (c *PingCommand) Category() string    { return "🛠️ Maintenance" }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	latency := context.Session.HeartbeatLatency().Milliseconds()
	return bot.Respond(context.Session, context.Event, fmt.Sprintf("🏓 Pong! %dms", latency))
}

func init() {
	command.Register(
		&PingCommand{},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)
}
