// Package general holds the built-in actions every bot gets: ping, help,
// dice rolls with a reroll button, router stats and an owner-only cooldown reset.
package general

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/keshon/dtscommands/internal/core"
	"github.com/keshon/dtscommands/internal/storage"
)

const (
	CategoryInformation = "🕯️ Information"
	CategoryGames       = "🎲 Game Mechanics"
	CategorySettings    = "⚙️ Settings"
)

// CategoryWeights orders help categories. Unknown categories sort last.
var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryGames:       10,
	CategorySettings:    20,
}

// History reads the per-guild invocation history.
type History interface {
	Invocations(guildID string) ([]storage.Invocation, error)
}

// Deps are the collaborators the actions need. All fields are optional.
type Deps struct {
	History History
	// Prefix is shown before text commands in slash help.
	Prefix string
	// Roll returns a number in [1, sides].
	Roll func(sides int) int
	Now  func() time.Time
}

func (d *Deps) defaults() {
	if d.Prefix == "" {
		d.Prefix = "!"
	}
	if d.Roll == nil {
		d.Roll = func(sides int) int { return rand.IntN(sides) + 1 }
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Register adds every built-in action and validation to r.
func Register(r *core.Router, d Deps) error {
	d.defaults()

	for _, v := range Validations() {
		r.AddValidation(v)
	}

	reg := r.Registry()
	if err := reg.AddText(pingText(d), helpText(), uncooldownText()); err != nil {
		return fmt.Errorf("register text commands: %w", err)
	}
	if err := reg.AddSlash(append([]*core.SlashCommand{pingSlash(d), helpSlash(d), rollSlash(d)}, statsSlash(d)...)...); err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}
	if err := reg.AddButton(rerollButton(d)); err != nil {
		return fmt.Errorf("register buttons: %w", err)
	}
	return nil
}

// Validations returns the custom validations the built-in actions rely on.
func Validations() []core.CustomValidation {
	return []core.CustomValidation{rollOwnerValidation()}
}
