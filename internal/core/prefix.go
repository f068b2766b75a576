package core

import (
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// PrefixResolver yields the prefixes accepted for one message, e.g. per guild.
type PrefixResolver interface {
	Prefixes(m *discordgo.MessageCreate) ([]string, error)
}

// PrefixFunc adapts a function to PrefixResolver.
type PrefixFunc func(m *discordgo.MessageCreate) ([]string, error)

func (f PrefixFunc) Prefixes(m *discordgo.MessageCreate) ([]string, error) { return f(m) }

// StaticPrefixes accepts the same prefixes everywhere.
type StaticPrefixes struct {
	Main       string
	Additional []string
}

func (p StaticPrefixes) Prefixes(*discordgo.MessageCreate) ([]string, error) {
	out := make([]string, 0, 1+len(p.Additional))
	if p.Main != "" {
		out = append(out, p.Main)
	}
	for _, a := range p.Additional {
		if a != "" {
			out = append(out, a)
		}
	}
	return out, nil
}

func mentionPrefixes(selfID string) []string {
	if selfID == "" {
		return nil
	}
	return []string{"<@" + selfID + ">", "<@!" + selfID + ">"}
}

// isBareMention reports whether content is nothing but a mention of the bot.
func isBareMention(content, selfID string) bool {
	content = strings.TrimSpace(content)
	for _, m := range mentionPrefixes(selfID) {
		if content == m {
			return true
		}
	}
	return false
}

// parsedCommand is a message split into prefix, lowercased name and arguments.
type parsedCommand struct {
	prefix string
	name   string
	args   []string
}

// parseCommand matches the longest prefix and splits the rest on whitespace.
func parseCommand(content string, prefixes []string) (parsedCommand, bool) {
	sorted := append([]string(nil), prefixes...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, p := range sorted {
		if p == "" || !strings.HasPrefix(content, p) {
			continue
		}
		fields := strings.Fields(content[len(p):])
		if len(fields) == 0 {
			return parsedCommand{}, false
		}
		return parsedCommand{
			prefix: p,
			name:   strings.ToLower(fields[0]),
			args:   fields[1:],
		}, true
	}
	return parsedCommand{}, false
}
