package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/music"
)

// panelSender implements music.PanelIO by mapping the neutral Panel onto a
// Discord embed plus one row of buttons.
type panelSender struct {
	dg *discordgo.Session
}

var _ music.PanelIO = (*panelSender)(nil)

func (p *panelSender) Send(channelID string, panel *music.Panel) (music.PanelRef, error) {
	msg, err := p.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{panelEmbed(panel)},
		Components: panelComponents(panel),
	})
	if err != nil {
		return music.PanelRef{}, err
	}
	return music.PanelRef{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (p *panelSender) Edit(ref music.PanelRef, panel *music.Panel) error {
	embeds := []*discordgo.MessageEmbed{panelEmbed(panel)}
	components := panelComponents(panel)
	_, err := p.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.ChannelID,
		ID:         ref.MessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func (p *panelSender) Delete(ref music.PanelRef) error {
	return p.dg.ChannelMessageDelete(ref.ChannelID, ref.MessageID)
}

func (p *panelSender) Notify(channelID, text string) error {
	_, err := p.dg.ChannelMessageSend(channelID, text)
	return err
}

func panelEmbed(panel *music.Panel) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       panel.Title,
		Description: panel.Description,
		Color:       bot.EmbedColor,
	}
	if panel.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: panel.ThumbnailURL}
	}
	if panel.Footer.Name != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    panel.Footer.Name,
			IconURL: panel.Footer.AvatarURL,
		}
	}
	for _, f := range panel.Fields {
		name := f.Name
		if name == "" {
			// Discord rejects empty field names.
			name = "​"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: f.Value,
		})
	}
	return embed
}

func panelComponents(panel *music.Panel) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	for _, c := range panel.Controls {
		buttons = append(buttons, discordgo.Button{
			Style:    discordgo.SecondaryButton,
			Emoji:    &discordgo.ComponentEmoji{Name: c.Glyph},
			CustomID: c.ID,
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}
