package member

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
	"github.com/keshon/server-jester/internal/storage"
)

const warnPickID = "warn_pick"

// WarnCommand posts the warning panel: a user select over the guild members
// plus the current counts. Picks increment and persist; a fresh panel
// supersedes the previous one for the guild.
type WarnCommand struct {
	mu     sync.Mutex
	panels map[string]panelRef // guildID -> last posted panel
}

type panelRef struct {
	channelID string
	messageID string
}

func NewWarnCommand() *WarnCommand {
	return &WarnCommand{panels: make(map[string]panelRef)}
}

func (c *WarnCommand) Name() string        { return "warn" }
func (c *WarnCommand) Description() string { return "Track member warnings" }
func (c *WarnCommand) Group() string       { return "member" }
func (c *WarnCommand) Category() string    { return "👮 Moderation" }

func (c *WarnCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *WarnCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := context.Session
	e := context.Event

	c.supersede(s, e.GuildID)

	err := s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{warnEmbed(context.Storage, e.GuildID)},
			Components: warnComponents(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to respond: %w", err)
	}

	msg, err := s.InteractionResponse(e.Interaction)
	if err != nil {
		return fmt.Errorf("failed to fetch warn panel: %w", err)
	}

	c.mu.Lock()
	c.panels[e.GuildID] = panelRef{channelID: msg.ChannelID, messageID: msg.ID}
	c.mu.Unlock()
	return nil
}

// Component handles a pick from the user select: bump the count, refresh the
// panel in place.
func (c *WarnCommand) Component(ctx *command.ComponentInteractionContext) error {
	s := ctx.Session
	e := ctx.Event
	data := e.MessageComponentData()
	if data.CustomID != warnPickID || len(data.Values) == 0 {
		return nil
	}

	targetID := data.Values[0]
	count, err := ctx.Storage.AddWarning(e.GuildID, targetID)
	if err != nil {
		return bot.RespondEphemeral(s, e, fmt.Sprintf("Failed to record warning: %v", err))
	}
	log.Printf("[INFO] Warning #%d issued to %s in guild %s", count, targetID, e.GuildID)

	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{warnEmbed(ctx.Storage, e.GuildID)},
			Components: warnComponents(),
		},
	})
}

// supersede removes the guild's previous warning panel, if any.
func (c *WarnCommand) supersede(s *discordgo.Session, guildID string) {
	c.mu.Lock()
	ref, ok := c.panels[guildID]
	delete(c.panels, guildID)
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := s.ChannelMessageDelete(ref.channelID, ref.messageID); err != nil {
		log.Println("[WARN] Failed to delete stale warn panel:", err)
	}
}

func warnEmbed(store *storage.Storage, guildID string) *discordgo.MessageEmbed {
	warnings, err := store.Warnings(guildID)
	if err != nil {
		log.Println("[WARN] Failed to load warnings:", err)
	}

	body := "No warnings yet. A clean slate."
	if len(warnings) > 0 {
		type entry struct {
			userID string
			count  int
		}
		entries := make([]entry, 0, len(warnings))
		for userID, count := range warnings {
			entries = append(entries, entry{userID, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].userID < entries[j].userID
		})

		var lines []string
		for _, en := range entries {
			lines = append(lines, fmt.Sprintf("<@%s> — %d", en.userID, en.count))
		}
		body = strings.Join(lines, "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       "⚠️ Warnings",
		Description: "Pick a member to warn them.\n\n" + body,
		Color:       bot.EmbedColor,
	}
}

func warnComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.UserSelectMenu,
				CustomID:    warnPickID,
				Placeholder: "Who earned it this time?",
			},
		}},
	}
}
