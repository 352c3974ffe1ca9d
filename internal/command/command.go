package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-jester/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// Providers - how a command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Hooks beyond Run
type ComponentInteractionHandler interface {
	Component(*ComponentInteractionContext) error
}

type ModalSubmitHandler interface {
	ModalSubmit(*ModalSubmitContext) error
}

// MessageListener receives every guild message, not just command
// invocations. Used by the classifier.
type MessageListener interface {
	Message(*MessageContext) error
}

// Contexts - what the runtime hands a command when executing it

type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type ComponentInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type ModalSubmitContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Storage *storage.Storage
}
