package command

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

type Middleware func(Command) Command

// wrapped forwards the optional interfaces so middleware never hides a
// command's slash definition or component hooks from the dispatcher.
type wrapped struct {
	Command
	wrapFn func(ctx interface{}) error
}

func (w *wrapped) Run(ctx interface{}) error {
	return w.wrapFn(ctx)
}

func (w *wrapped) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func (w *wrapped) Component(ctx *ComponentInteractionContext) error {
	if ch, ok := w.Command.(ComponentInteractionHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

func (w *wrapped) ModalSubmit(ctx *ModalSubmitContext) error {
	if mh, ok := w.Command.(ModalSubmitHandler); ok {
		return mh.ModalSubmit(ctx)
	}
	return nil
}

func (w *wrapped) Message(ctx *MessageContext) error {
	if ml, ok := w.Command.(MessageListener); ok {
		return ml.Message(ctx)
	}
	return nil
}

// WithGuildOnly drops slash invocations that arrive outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrapped{
			Command: cmd,
			wrapFn: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.GuildID == "" {
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger records slash invocations to the guild's command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrapped{
			Command: cmd,
			wrapFn: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.Member != nil {
					user := v.Event.Member.User
					if err := LogCommand(v.Session, v.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, cmd.Name()); err != nil {
						log.Println("[WARN] Failed to log command:", err)
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}
