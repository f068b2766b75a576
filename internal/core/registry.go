package core

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Registry holds the text command, slash command and button tables of one
// router. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	text      map[string]*TextCommand
	aliases   map[string]string
	slash     map[string]*SlashCommand
	subs      map[string]*SlashCommand
	buttons   []*Button
	nicknames map[string]bool
}

func newRegistry() *Registry {
	return &Registry{
		text:      map[string]*TextCommand{},
		aliases:   map[string]string{},
		slash:     map[string]*SlashCommand{},
		subs:      map[string]*SlashCommand{},
		nicknames: map[string]bool{},
	}
}

// AddText registers text commands and their aliases. Names are
// case-insensitive. Nothing is registered if any command is rejected.
func (r *Registry) AddText(cmds ...*TextCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := &Registry{text: maps.Clone(r.text), aliases: maps.Clone(r.aliases)}
	for _, c := range cmds {
		if err := next.addTextLocked(c); err != nil {
			return err
		}
	}
	r.text, r.aliases = next.text, next.aliases
	return nil
}

func (r *Registry) addTextLocked(c *TextCommand) error {
	if c == nil || c.Name == "" || c.Run == nil {
		return fmt.Errorf("text command: %w", ErrInvalidAction)
	}
	c.Name = strings.ToLower(c.Name)
	if r.taken(c.Name) {
		return fmt.Errorf("text command %q: %w", c.Name, ErrDuplicate)
	}
	for i, a := range c.Aliases {
		a = strings.ToLower(a)
		c.Aliases[i] = a
		if a == c.Name || r.taken(a) {
			return fmt.Errorf("alias %q of %q: %w", a, c.Name, ErrDuplicate)
		}
	}
	r.text[c.Name] = c
	for _, a := range c.Aliases {
		r.aliases[a] = c.Name
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	_, cmd := r.text[name]
	_, alias := r.aliases[name]
	return cmd || alias
}

// RemoveText unregisters a text command by name together with its aliases.
func (r *Registry) RemoveText(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	name = strings.ToLower(name)
	c, ok := r.text[name]
	if !ok {
		return false
	}
	delete(r.text, name)
	for _, a := range c.Aliases {
		delete(r.aliases, a)
	}
	return true
}

// ReplaceText swaps the whole text command table. On error the old table is kept.
func (r *Registry) ReplaceText(cmds []*TextCommand) error {
	next := newRegistry()
	for _, c := range cmds {
		if err := next.addTextLocked(c); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.text, r.aliases = next.text, next.aliases
	r.mu.Unlock()
	return nil
}

// TextCommand finds a text command by name or alias.
func (r *Registry) TextCommand(name string) (*TextCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name = strings.ToLower(name)
	if c, ok := r.text[name]; ok {
		return c, true
	}
	if target, ok := r.aliases[name]; ok {
		c, ok := r.text[target]
		return c, ok
	}
	return nil, false
}

// TextCommands lists text commands sorted by name.
func (r *Registry) TextCommands() []*TextCommand {
	r.mu.RLock()
	list := make([]*TextCommand, 0, len(r.text))
	for _, c := range r.text {
		list = append(list, c)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// AddSlash registers slash commands and sub-commands. A command with a
// SubCommand key goes into the sub-command table. Nothing is registered if
// any command is rejected.
func (r *Registry) AddSlash(cmds ...*SlashCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := &Registry{slash: maps.Clone(r.slash), subs: maps.Clone(r.subs)}
	for _, c := range cmds {
		if err := next.addSlashLocked(c); err != nil {
			return err
		}
	}
	r.slash, r.subs = next.slash, next.subs
	return nil
}

func (r *Registry) addSlashLocked(c *SlashCommand) error {
	if c == nil || c.Run == nil || c.Key() == "" {
		return fmt.Errorf("slash command: %w", ErrInvalidAction)
	}
	if c.SubCommand != "" {
		if _, ok := r.subs[c.SubCommand]; ok {
			return fmt.Errorf("sub command %q: %w", c.SubCommand, ErrDuplicate)
		}
		r.subs[c.SubCommand] = c
		return nil
	}
	if _, ok := r.slash[c.Definition.Name]; ok {
		return fmt.Errorf("slash command %q: %w", c.Definition.Name, ErrDuplicate)
	}
	r.slash[c.Definition.Name] = c
	return nil
}

// RemoveSlash unregisters a slash command by name or a sub-command by key.
func (r *Registry) RemoveSlash(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slash[key]; ok {
		delete(r.slash, key)
		return true
	}
	if _, ok := r.subs[key]; ok {
		delete(r.subs, key)
		return true
	}
	return false
}

// ReplaceSlash swaps both slash tables. On error the old tables are kept.
func (r *Registry) ReplaceSlash(cmds []*SlashCommand) error {
	next := newRegistry()
	for _, c := range cmds {
		if err := next.addSlashLocked(c); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.slash, r.subs = next.slash, next.subs
	r.mu.Unlock()
	return nil
}

// SlashCommand finds a top-level slash command.
func (r *Registry) SlashCommand(name string) (*SlashCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.slash[name]
	return c, ok
}

// SubCommand finds a sub-command by its "parent.sub" or "parent.group.sub" key.
func (r *Registry) SubCommand(key string) (*SlashCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.subs[key]
	return c, ok
}

// SlashCommands lists top-level slash commands sorted by name.
func (r *Registry) SlashCommands() []*SlashCommand {
	r.mu.RLock()
	list := make([]*SlashCommand, 0, len(r.slash))
	for _, c := range r.slash {
		list = append(list, c)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Definition.Name < list[j].Definition.Name })
	return list
}

// Definitions returns the application command definitions to push to Discord.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	cmds := r.SlashCommands()
	defs := make([]*discordgo.ApplicationCommand, len(cmds))
	for i, c := range cmds {
		defs[i] = c.Definition
	}
	return defs
}

// AddButton appends button handlers. Matching follows registration order.
// Nothing is registered if any button is rejected.
func (r *Registry) AddButton(btns ...*Button) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := &Registry{buttons: slices.Clone(r.buttons), nicknames: maps.Clone(r.nicknames)}
	for _, b := range btns {
		if err := next.addButtonLocked(b); err != nil {
			return err
		}
	}
	r.buttons, r.nicknames = next.buttons, next.nicknames
	return nil
}

func (r *Registry) addButtonLocked(b *Button) error {
	if b == nil || b.Nickname == "" || b.Match == nil || b.Run == nil {
		return fmt.Errorf("button: %w", ErrInvalidAction)
	}
	if r.nicknames[b.Nickname] {
		return fmt.Errorf("button %q: %w", b.Nickname, ErrDuplicate)
	}
	r.nicknames[b.Nickname] = true
	r.buttons = append(r.buttons, b)
	return nil
}

// RemoveButton unregisters a button handler by nickname.
func (r *Registry) RemoveButton(nickname string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.buttons {
		if b.Nickname == nickname {
			r.buttons = append(r.buttons[:i:i], r.buttons[i+1:]...)
			delete(r.nicknames, nickname)
			return true
		}
	}
	return false
}

// ReplaceButtons swaps the button list. On error the old list is kept.
func (r *Registry) ReplaceButtons(btns []*Button) error {
	next := newRegistry()
	for _, b := range btns {
		if err := next.addButtonLocked(b); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.buttons, r.nicknames = next.buttons, next.nicknames
	r.mu.Unlock()
	return nil
}

// MatchButton returns the first button whose predicate accepts customID.
func (r *Registry) MatchButton(customID string) (*Button, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.buttons {
		if b.Match(customID) {
			return b, true
		}
	}
	return nil, false
}

// Buttons lists button handlers in registration order.
func (r *Registry) Buttons() []*Button {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Button(nil), r.buttons...)
}

// Counts is the size of each table.
type Counts struct {
	TextCommands  int
	Aliases       int
	SlashCommands int
	SubCommands   int
	Buttons       int
}

func (r *Registry) Counts() Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Counts{
		TextCommands:  len(r.text),
		Aliases:       len(r.aliases),
		SlashCommands: len(r.slash),
		SubCommands:   len(r.subs),
		Buttons:       len(r.buttons),
	}
}
