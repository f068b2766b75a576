package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keshon/dtscommands/internal/command/general"
	"github.com/keshon/dtscommands/internal/discord"
	"github.com/keshon/dtscommands/internal/logging"
	"github.com/keshon/dtscommands/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve commands (default)",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log)
	log.Info().Str("app", appName).Msg("starting bot")

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to flush storage")
		}
	}()

	bot, err := discord.New(cfg, store, log)
	if err != nil {
		return err
	}
	if err := general.Register(bot.Router(), general.Deps{History: store, Prefix: cfg.Prefix}); err != nil {
		return fmt.Errorf("register built-in actions: %w", err)
	}
	addLifecycleEvents(bot, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("bot exited cleanly")
	return nil
}

func addLifecycleEvents(bot *discord.Bot, log zerolog.Logger) {
	bot.AddEventHandler("guildCreate", func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("joined guild")
	})
	bot.AddEventHandler("guildDelete", func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		log.Info().Str("guild", g.ID).Bool("unavailable", g.Unavailable).Msg("left guild")
	})
	bot.AddEventHandler("disconnect", func(*discordgo.Session, *discordgo.Disconnect) {
		log.Warn().Msg("gateway disconnected")
	})
}
