package music

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/music"
)

// pickEmojis index the pick list one-based, matching the rendered numbers.
var pickEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

const pickTimeout = 10 * time.Second

// pickListIO is the message plumbing behind the candidate list.
type pickListIO interface {
	Post(channelID string, embed *discordgo.MessageEmbed) (messageID string, err error)
	React(channelID, messageID, emoji string) error
	Remove(channelID, messageID string) error
}

type discordPickList struct {
	dg *discordgo.Session
}

func (p *discordPickList) Post(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	msg, err := bot.MessageEmbed(p.dg, channelID, embed)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (p *discordPickList) React(channelID, messageID, emoji string) error {
	return p.dg.MessageReactionAdd(channelID, messageID, emoji)
}

func (p *discordPickList) Remove(channelID, messageID string) error {
	return p.dg.ChannelMessageDelete(channelID, messageID)
}

// runPickList searches and hands the candidates to the pick flow.
func (c *MusicCommand) runPickList(s *discordgo.Session, channelID, userID string, user music.Identity, session *music.Session, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	candidates, err := c.Bot.Resolver().ResolveByQuery(ctx, query)
	if err != nil || len(candidates) == 0 {
		_, _ = bot.MessageEmbed(s, channelID, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("🔍 Nothing found for `%s`.", query),
		})
		return
	}
	c.pickFromList(&discordPickList{dg: s}, channelID, userID, user, session, candidates)
}

// pickFromList posts a numbered candidate list, waits for the requesting user
// to react with a number, and queues the choice. The list message is deleted
// either way; when the window closes without a pick, nothing is queued.
func (c *MusicCommand) pickFromList(pl pickListIO, channelID, userID string, user music.Identity, session *music.Session, candidates []music.Candidate) {
	if len(candidates) > len(pickEmojis) {
		candidates = candidates[:len(pickEmojis)]
	}

	var lines []string
	for i, cand := range candidates {
		lines = append(lines, fmt.Sprintf("%d. [%s](%s)", i+1, cand.Title, cand.URL))
	}
	msgID, err := pl.Post(channelID, &discordgo.MessageEmbed{
		Title:       "🔍 Pick a track",
		Description: strings.Join(lines, "\n"),
	})
	if err != nil {
		log.Println("[WARN] Failed to post pick list:", err)
		return
	}
	defer func() {
		if err := pl.Remove(channelID, msgID); err != nil {
			log.Println("[WARN] Failed to delete pick list:", err)
		}
	}()

	for i := range candidates {
		if err := pl.React(channelID, msgID, pickEmojis[i]); err != nil {
			log.Println("[WARN] Failed to add pick reaction:", err)
			break
		}
	}

	emoji, err := c.Bot.AwaitReaction(channelID, msgID, userID, pickEmojis[:len(candidates)], pickTimeout)
	if err != nil {
		return
	}
	for i, pe := range pickEmojis[:len(candidates)] {
		if pe == emoji {
			session.EnqueueByID(candidates[i].ID, user)
			return
		}
	}
}
