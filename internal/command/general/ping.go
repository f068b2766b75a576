package general

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/dtscommands/internal/core"
)

const pingDescription = "Check bot latency"

func pingText(d Deps) *core.TextCommand {
	return &core.TextCommand{
		Name:        "ping",
		Aliases:     []string{"p"},
		Category:    CategoryInformation,
		Description: pingDescription,
		Run: func(ctx *core.TextContext) error {
			_, err := ctx.Reply(pong(ctx.Router.Theme().Primary, ctx.Event.ID, d.Now()))
			return err
		},
	}
}

func pingSlash(d Deps) *core.SlashCommand {
	return &core.SlashCommand{
		Definition: &discordgo.ApplicationCommand{
			Name:        "ping",
			Description: pingDescription,
		},
		Category: CategoryInformation,
		Run: func(ctx *core.SlashContext) error {
			reply := pong(ctx.Router.Theme().Primary, ctx.Event.ID, d.Now())
			reply.Ephemeral = true
			return ctx.Reply(reply)
		},
	}
}

// pong measures the time between the snowflake creation and now.
func pong(color int, snowflake string, now time.Time) *core.Reply {
	latency := "unknown"
	if created, err := discordgo.SnowflakeTimestamp(snowflake); err == nil {
		latency = fmt.Sprintf("%dms", now.Sub(created).Milliseconds())
	}
	e := embed.NewEmbed().
		SetTitle("Pong! 🏓").
		SetDescription("Latency: " + latency).
		SetColor(color)
	return core.EmbedReply(e.MessageEmbed)
}
