package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
	"github.com/keshon/server-jester/internal/version"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string        { return "about" }
func (c *AboutCommand) Description() string { return "Discover the origin of this bot" }
func (c *AboutCommand) Group() string       { return "core" }
func (c *AboutCommand) Category() string    { return "🕯️ Information" }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       version.AppFullName,
		Description: version.AppDescription,
		Color:       bot.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: version.Version, Inline: true},
			{Name: "Built", Value: version.BuildDate, Inline: true},
			{Name: "Go", Value: version.GoVersion, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Serving %d guilds", len(context.Session.State.Guilds)),
		},
	}
	return bot.RespondEmbed(context.Session, context.Event, embed)
}

func init() {
	command.Register(
		&AboutCommand{},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)
}
