package general

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/dtscommands/internal/core"
)

const helpDescription = "Get a list of available commands"

func helpText() *core.TextCommand {
	return &core.TextCommand{
		Name:        "help",
		Aliases:     []string{"h", "commands"},
		Category:    CategoryInformation,
		Description: helpDescription,
		Usage:       "[command]",
		Run: func(ctx *core.TextContext) error {
			r := ctx.Router
			if len(ctx.Args) > 0 {
				cmd, ok := r.Registry().TextCommand(ctx.Args[0])
				if !ok {
					return core.NewValidationError(fmt.Sprintf("Unknown command `%s`.", ctx.Args[0]))
				}
				_, err := ctx.Reply(core.EmbedReply(commandDetails(cmd, ctx.Prefix, r.Theme().Primary)))
				return err
			}
			_, err := ctx.Reply(core.EmbedReply(helpEmbed(r, ctx.Author().ID, ctx.Prefix)))
			return err
		},
	}
}

func helpSlash(d Deps) *core.SlashCommand {
	return &core.SlashCommand{
		Definition: &discordgo.ApplicationCommand{
			Name:        "help",
			Description: helpDescription,
		},
		Category: CategoryInformation,
		Run: func(ctx *core.SlashContext) error {
			reply := core.EmbedReply(helpEmbed(ctx.Router, ctx.User().ID, d.Prefix))
			reply.Ephemeral = true
			return ctx.Reply(reply)
		},
	}
}

type helpEntry struct {
	name        string
	description string
}

// helpEmbed lists the commands visible to actorID, grouped by category.
// Owner-only text commands and beta slash commands are hidden from others.
func helpEmbed(r *core.Router, actorID, prefix string) *discordgo.MessageEmbed {
	byCategory := map[string][]helpEntry{}

	for _, c := range r.Registry().TextCommands() {
		if c.Owner && !r.IsOwner(actorID) {
			continue
		}
		byCategory[c.Category] = append(byCategory[c.Category], helpEntry{prefix + c.Name, c.Description})
	}
	for _, c := range r.Registry().SlashCommands() {
		if c.Beta && !r.IsBetaTester(actorID) {
			continue
		}
		byCategory[c.Category] = append(byCategory[c.Category], helpEntry{"/" + c.Definition.Name, c.Definition.Description})
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		wi, wj := categoryWeight(categories[i]), categoryWeight(categories[j])
		if wi != wj {
			return wi < wj
		}
		return categories[i] < categories[j]
	})

	var sb strings.Builder
	for _, cat := range categories {
		title := cat
		if title == "" {
			title = "Other"
		}
		fmt.Fprintf(&sb, "**%s**\n", title)
		entries := byCategory[cat]
		sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
		for _, e := range entries {
			fmt.Fprintf(&sb, "`%s` - %s\n", e.name, e.description)
		}
		sb.WriteString("\n")
	}

	return embed.NewEmbed().
		SetTitle("Help").
		SetDescription(strings.TrimSpace(sb.String())).
		SetColor(r.Theme().Primary).
		MessageEmbed
}

func categoryWeight(cat string) int {
	if w, ok := CategoryWeights[cat]; ok {
		return w
	}
	return 1 << 20
}

func commandDetails(c *core.TextCommand, prefix string, color int) *discordgo.MessageEmbed {
	var sb strings.Builder
	sb.WriteString(c.Description)
	if c.Usage != "" {
		fmt.Fprintf(&sb, "\n\n**Usage:** `%s%s %s`", prefix, c.Name, c.Usage)
	}
	if len(c.Aliases) > 0 {
		fmt.Fprintf(&sb, "\n**Aliases:** %s", strings.Join(c.Aliases, ", "))
	}
	return embed.NewEmbed().
		SetTitle(prefix + c.Name).
		SetDescription(sb.String()).
		SetColor(color).
		MessageEmbed
}
