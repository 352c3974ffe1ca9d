package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/bot"
	"github.com/keshon/server-jester/internal/command"
	"github.com/keshon/server-jester/internal/config"
	"github.com/keshon/server-jester/internal/music"
	"github.com/keshon/server-jester/internal/music/youtube"
	"github.com/keshon/server-jester/internal/storage"
)

// Bot is the Discord bot runtime: one gateway session, the per-guild music
// sessions, and the shared track resolver.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage

	mu       sync.Mutex
	sessions map[string]*music.Session
	resolver *music.Resolver
}

func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{
		cfg:      cfg,
		storage:  store,
		sessions: make(map[string]*music.Session),
		resolver: music.NewResolver(youtube.New(), music.NewHistory()),
	}
}

// Run connects to the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	b.CloseSessions()
	return nil
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if err := b.registerCommands(g.ID); err != nil {
			log.Printf("[ERR] Failed to register commands for guild %s: %v", g.ID, err)
		}
	}
	log.Printf("[INFO] ✅ Discord bot %v is running.", s.State.User.Username)
}

// onGuildCreate is called when the bot joins a guild
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)
	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
	}
}

// onMessageCreate feeds guild messages to listener commands (the classifier).
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	for _, cmd := range command.All() {
		listener, ok := cmd.(command.MessageListener)
		if !ok {
			continue
		}
		ctx := &command.MessageContext{
			Session: s,
			Event:   m,
			Storage: b.storage,
		}
		if err := listener.Message(ctx); err != nil {
			log.Println("[ERR] Error running message listener:", err)
		}
	}
}

// onInteractionCreate dispatches slash commands, component activations and
// modal submissions to the registry.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cmdName := i.ApplicationCommandData().Name
		cmd, ok := command.Get(cmdName)
		if !ok {
			log.Printf("[WARN] Unknown command: %s", cmdName)
			return
		}
		ctx := &command.SlashInteractionContext{Session: s, Event: i, Storage: b.storage}
		if err := cmd.Run(ctx); err != nil {
			log.Println("[ERR] Error running slash command:", err)
			_ = bot.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
				Description: fmt.Sprintf("Error running command: %v", err),
			})
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		matched := matchByPrefix(customID)
		if matched == nil {
			log.Printf("[WARN] No matching command for component: %s", customID)
			return
		}
		handler, ok := matched.(command.ComponentInteractionHandler)
		if !ok {
			log.Printf("[WARN] Command %s has no component handler", matched.Name())
			return
		}
		ctx := &command.ComponentInteractionContext{Session: s, Event: i, Storage: b.storage}
		if err := handler.Component(ctx); err != nil {
			log.Printf("[ERR] Error running component %s: %v", customID, err)
		}

	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		matched := matchByPrefix(customID)
		if matched == nil {
			log.Printf("[WARN] No matching command for modal: %s", customID)
			return
		}
		handler, ok := matched.(command.ModalSubmitHandler)
		if !ok {
			log.Printf("[WARN] Command %s has no modal handler", matched.Name())
			return
		}
		ctx := &command.ModalSubmitContext{Session: s, Event: i, Storage: b.storage}
		if err := handler.ModalSubmit(ctx); err != nil {
			log.Printf("[ERR] Error running modal %s: %v", customID, err)
		}
	}
}

// matchByPrefix finds the command whose name prefixes a component or modal
// custom ID ("music_play" belongs to "music").
func matchByPrefix(customID string) command.Command {
	for _, cmd := range command.All() {
		name := cmd.Name()
		if customID == name ||
			strings.HasPrefix(customID, name+"_") ||
			strings.HasPrefix(customID, name+":") {
			return cmd
		}
	}
	return nil
}

// registerCommands overwrites the guild's slash commands with the registry.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	var wanted []*discordgo.ApplicationCommand
	for _, cmd := range command.All() {
		if slash, ok := cmd.(command.SlashProvider); ok {
			if def := slash.SlashDefinition(); def != nil {
				wanted = append(wanted, def)
			}
		}
	}

	_, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, wanted)
	if err != nil {
		return fmt.Errorf("bulk overwrite for guild %s: %w", guildID, err)
	}
	log.Printf("[DONE] Registered %d commands for guild %s", len(wanted), guildID)
	return nil
}
