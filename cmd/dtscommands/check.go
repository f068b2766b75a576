package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keshon/dtscommands/internal/command/general"
	"github.com/keshon/dtscommands/internal/discord"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and list what would be registered",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		bot, err := discord.New(cfg, nil, zerolog.Nop())
		if err != nil {
			return err
		}
		if err := general.Register(bot.Router(), general.Deps{Prefix: cfg.Prefix}); err != nil {
			return err
		}
		addLifecycleEvents(bot, zerolog.Nop())

		st := bot.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "prefixes:        %s\n", strings.Join(append([]string{cfg.Prefix}, cfg.AdditionalPrefixes...), " "))
		fmt.Fprintf(out, "cooldown:        %s %s (enabled=%t)\n", cfg.Cooldown.Type, cfg.Cooldown.Duration, cfg.Cooldown.Enabled)
		fmt.Fprintf(out, "text commands:   %d (%d aliases)\n", st.TextCommands, st.Aliases)
		fmt.Fprintf(out, "slash commands:  %d (%d sub commands)\n", st.SlashCommands, st.SubCommands)
		fmt.Fprintf(out, "buttons:         %d\n", st.Buttons)
		fmt.Fprintf(out, "validations:     %d\n", st.Validations)
		fmt.Fprintf(out, "event handlers:  %s\n", strings.Join(st.EventNames(), ", "))

		scope := "global"
		if len(cfg.TestServers) > 0 {
			scope = strings.Join(cfg.TestServers, ", ")
		}
		fmt.Fprintf(out, "sync scope:      %s (enabled=%t)\n", scope, cfg.SyncCommands)
		fmt.Fprintf(out, "shard:           %d of %d\n", cfg.ShardID, max(cfg.ShardCount, 1))
		return nil
	},
}
