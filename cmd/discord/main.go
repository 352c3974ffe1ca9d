// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/keshon/server-jester/internal/command/core"

	"github.com/keshon/server-jester/internal/classifier"
	"github.com/keshon/server-jester/internal/command"
	classifiercmd "github.com/keshon/server-jester/internal/command/classifier"
	"github.com/keshon/server-jester/internal/command/game"
	"github.com/keshon/server-jester/internal/command/member"
	"github.com/keshon/server-jester/internal/command/music"
	"github.com/keshon/server-jester/internal/config"
	"github.com/keshon/server-jester/internal/discord"
	"github.com/keshon/server-jester/internal/storage"
	v "github.com/keshon/server-jester/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	bot := discord.NewBot(cfg, store)

	command.Register(
		&music.MusicCommand{Bot: bot},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)
	command.Register(
		&game.RPSCommand{Awaiter: bot},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)
	command.Register(
		game.NewDiceCommand(),
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)
	command.Register(
		member.NewWarnCommand(),
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)

	var scorer *classifier.Client
	if cfg.ClassifierURL != "" {
		scorer = classifier.New(cfg.ClassifierURL)
	}
	command.Register(
		&classifiercmd.ClassifierCommand{Client: scorer, Panels: bot},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
