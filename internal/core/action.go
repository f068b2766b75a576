package core

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Kind tells the three action kinds apart.
type Kind int

const (
	KindText Kind = iota + 1
	KindSlash
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSlash:
		return "slash"
	case KindButton:
		return "button"
	default:
		return "unknown"
	}
}

// Action is a registered command, sub-command or button handler.
type Action interface {
	Kind() Kind
	// Key identifies the action in cooldown keys and logs.
	Key() string
	gating() *Gates
}

// Gates holds the gating attributes every action kind shares.
type Gates struct {
	// Validations names custom validations, evaluated in order at dispatch time.
	Validations []string
	// Cooldown overrides the process-wide cooldown policy. Nil keeps the default.
	Cooldown *CooldownOverride
}

func (g *Gates) gating() *Gates { return g }

// TextCommand is a prefix-invoked command.
type TextCommand struct {
	Name        string
	Category    string
	Description string
	Aliases     []string
	// Args requires at least one argument; Usage is shown when none is given.
	Args      bool
	Usage     string
	UserPerms []int64
	BotPerms  []int64
	Owner     bool
	Manager   bool
	GuildOnly bool
	Gates
	Run func(ctx *TextContext) error
}

func (c *TextCommand) Kind() Kind  { return KindText }
func (c *TextCommand) Key() string { return c.Name }

// SlashCommand is a chat-input interaction command. Top-level commands carry
// a Definition; sub-commands carry a SubCommand key instead, written as
// "parent.sub" or "parent.group.sub".
type SlashCommand struct {
	Definition *discordgo.ApplicationCommand
	SubCommand string
	Category   string
	BotPerms   []int64
	Manager    bool
	Beta       bool
	GuildOnly  bool
	Gates
	Run func(ctx *SlashContext) error
}

func (c *SlashCommand) Kind() Kind { return KindSlash }

func (c *SlashCommand) Key() string {
	if c.SubCommand != "" {
		return c.SubCommand
	}
	if c.Definition != nil {
		return c.Definition.Name
	}
	return ""
}

// Button handles message component button presses whose custom ID satisfies Match.
type Button struct {
	Nickname    string
	Description string
	Category    string
	Match       func(customID string) bool
	Gates
	Run func(ctx *ButtonContext) error
}

func (b *Button) Kind() Kind  { return KindButton }
func (b *Button) Key() string { return b.Nickname }

// PrefixMatch matches custom IDs equal to prefix or starting with prefix
// followed by ':' or '_'.
func PrefixMatch(prefix string) func(string) bool {
	return func(customID string) bool {
		if customID == prefix {
			return true
		}
		return strings.HasPrefix(customID, prefix+":") || strings.HasPrefix(customID, prefix+"_")
	}
}

// ExactMatch matches one custom ID.
func ExactMatch(id string) func(string) bool {
	return func(customID string) bool { return customID == id }
}
