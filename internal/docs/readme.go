// Package docs renders the registered actions as a Markdown command reference.
package docs

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dtscommands/internal/core"
)

//go:embed readme.md.tmpl
var defaultTemplate string

type entry struct {
	category    string
	name        string
	description string
}

// CommandSections lists every text command, slash command, sub-command and
// button under a "### category" heading. categoryWeights orders the
// headings (lower first); unknown categories come last, by name.
func CommandSections(reg *core.Registry, prefix string, categoryWeights map[string]int) string {
	var entries []entry
	for _, c := range reg.TextCommands() {
		name := prefix + c.Name
		if c.Usage != "" {
			name += " " + c.Usage
		}
		entries = append(entries, entry{c.Category, name, c.Description})
	}
	for _, c := range reg.SlashCommands() {
		entries = append(entries, entry{c.Category, "/" + c.Definition.Name, c.Definition.Description})
		for _, o := range c.Definition.Options {
			if o.Type == discordgo.ApplicationCommandOptionSubCommand {
				entries = append(entries, entry{c.Category, "/" + c.Definition.Name + " " + o.Name, o.Description})
			}
		}
	}
	for _, b := range reg.Buttons() {
		entries = append(entries, entry{b.Category, "[" + b.Nickname + "]", b.Description})
	}

	weight := func(cat string) int {
		if w, ok := categoryWeights[cat]; ok {
			return w
		}
		return 1 << 20
	}
	sort.SliceStable(entries, func(i, j int) bool {
		wi, wj := weight(entries[i].category), weight(entries[j].category)
		if wi != wj {
			return wi < wj
		}
		if entries[i].category != entries[j].category {
			return entries[i].category < entries[j].category
		}
		return entries[i].name < entries[j].name
	})

	var buf bytes.Buffer
	current := ""
	for i, e := range entries {
		if i == 0 || e.category != current {
			if i > 0 {
				buf.WriteString("\n")
			}
			current = e.category
			title := current
			if title == "" {
				title = "Other"
			}
			fmt.Fprintf(&buf, "### %s\n\n", title)
		}
		fmt.Fprintf(&buf, "- **`%s`** - %s\n", e.name, e.description)
	}
	return buf.String()
}

// Render executes the template at tmplPath, or the built-in one when
// tmplPath is empty, with the command sections and writes it to outPath.
func Render(tmplPath, outPath, appName, sections string) error {
	text := defaultTemplate
	if tmplPath != "" {
		data, err := os.ReadFile(tmplPath)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		text = string(data)
	}

	tmpl, err := template.New("readme").Parse(text)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	var out bytes.Buffer
	data := struct {
		AppName         string
		CommandSections string
	}{appName, strings.TrimRight(sections, "\n")}
	if err := tmpl.Execute(&out, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}
