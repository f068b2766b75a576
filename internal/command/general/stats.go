package general

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/dtscommands/internal/core"
)

var errNoSubCommand = errors.New("stats invoked without a sub command")

func statsSlash(d Deps) []*core.SlashCommand {
	parent := &core.SlashCommand{
		Definition: &discordgo.ApplicationCommand{
			Name:        "stats",
			Description: "Router and usage statistics",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "router",
					Description: "Registered actions and runtime state",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "history",
					Description: "Latest commands used in this server",
				},
			},
		},
		Category: CategorySettings,
		Beta:     true,
		Run: func(*core.SlashContext) error {
			return errNoSubCommand
		},
	}

	routerCmd := &core.SlashCommand{
		SubCommand: "stats.router",
		Category:   CategorySettings,
		Beta:       true,
		Run: func(ctx *core.SlashContext) error {
			st := ctx.Router.Stats()
			desc := fmt.Sprintf(
				"**Text commands:** %d (%d aliases)\n**Slash commands:** %d (%d sub commands)\n"+
					"**Buttons:** %d\n**Validations:** %d\n**Active cooldowns:** %d\n**Running handlers:** %d\n\n%s",
				st.TextCommands, st.Aliases, st.SlashCommands, st.SubCommands,
				st.Buttons, st.Validations, st.ActiveCooldowns, st.RunningHandlers, st.Jobs,
			)
			reply := core.EmbedReply(embed.NewEmbed().
				SetTitle("Router stats").
				SetDescription(desc).
				SetColor(ctx.Router.Theme().Secondary).
				MessageEmbed)
			reply.Ephemeral = true
			return ctx.Reply(reply)
		},
	}

	historyCmd := &core.SlashCommand{
		SubCommand: "stats.history",
		Category:   CategorySettings,
		Beta:       true,
		GuildOnly:  true,
		Run: func(ctx *core.SlashContext) error {
			if d.History == nil {
				return core.NewValidationError("Command history is not being recorded.")
			}
			list, err := d.History.Invocations(ctx.Event.GuildID)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			var sb strings.Builder
			if len(list) == 0 {
				sb.WriteString("Nothing recorded yet.")
			}
			for i := len(list) - 1; i >= 0; i-- {
				inv := list[i]
				fmt.Fprintf(&sb, "<t:%d:R> `%s` %s by <@%s>\n", inv.Datetime.Unix(), inv.Action, inv.Kind, inv.UserID)
			}

			reply := core.EmbedReply(embed.NewEmbed().
				SetTitle("Command history").
				SetDescription(sb.String()).
				SetColor(ctx.Router.Theme().Secondary).
				MessageEmbed)
			reply.Ephemeral = true
			return ctx.Reply(reply)
		},
	}

	return []*core.SlashCommand{parent, routerCmd, historyCmd}
}

// uncooldownText lets owners lift someone's cooldown on an action.
func uncooldownText() *core.TextCommand {
	return &core.TextCommand{
		Name:        "uncooldown",
		Category:    CategorySettings,
		Description: "Lift a cooldown on an action",
		Args:        true,
		Usage:       "<action> [user]",
		Owner:       true,
		Gates:       core.Gates{Cooldown: core.CooldownToggle(false)},
		Run: func(ctx *core.TextContext) error {
			action := strings.ToLower(ctx.Args[0])
			target := ctx.Author().ID
			if len(ctx.Args) > 1 {
				target = mentionID(ctx.Args[1])
			}
			ctx.Router.ClearCooldown(action, target)
			_, err := ctx.Reply(core.Text(fmt.Sprintf("Cooldown on `%s` lifted for <@%s>.", action, target)))
			return err
		},
	}
}

// mentionID accepts "<@id>", "<@!id>" or a bare ID.
func mentionID(s string) string {
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimPrefix(s, "!")
	return strings.TrimSuffix(s, ">")
}
