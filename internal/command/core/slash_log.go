package core

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
)

var maxLogContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper)

// LogCommand shows the guild's recent command history, newest last.
type LogCommand struct{}

func (c *LogCommand) Name() string        { return "log" }
func (c *LogCommand) Description() string { return "Review recently used commands" }
func (c *LogCommand) Group() string       { return "core" }
func (c *LogCommand) Category() string    { return "🛠️ Maintenance" }

func (c *LogCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LogCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	e := context.Event

	records, err := context.Storage.CommandHistory(e.GuildID)
	if err != nil {
		return bot.RespondEphemeral(s, e, fmt.Sprintf("Failed to fetch command history: %v", err))
	}
	if len(records) == 0 {
		return bot.RespondEphemeral(s, e, "No commands on record yet.")
	}

	var lines []string
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("%s  #%s  %s  /%s",
			r.Datetime.Format("2006-01-02 15:04"), r.ChannelName, r.Username, r.Command))
	}

	content := strings.Join(lines, "\n")
	if len(content) > maxLogContentLength {
		content = content[len(content)-maxLogContentLength:]
	}

	return bot.RespondEphemeral(s, e, codeLeftBlockWrapper+"\n"+content+codeRightBlockWrapper)
}

func init() {
	command.Register(
		&LogCommand{},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)
}
