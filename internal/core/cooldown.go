package core

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dtscommands/pkg/cooldown"
)

// CooldownType selects how the process-wide cooldown applies to actions.
type CooldownType string

const (
	// CooldownGlobal applies the default to every action unless it opts out.
	CooldownGlobal CooldownType = "global"
	// CooldownSpecified applies cooldowns only to actions that declare an override.
	CooldownSpecified CooldownType = "specified"
)

// CooldownCheck carries the raw event to CooldownConfig.Check. Exactly one
// field is set.
type CooldownCheck struct {
	Message     *discordgo.MessageCreate
	Interaction *discordgo.InteractionCreate
}

// CooldownMessageFactory builds the notice shown to an actor still cooling down.
type CooldownMessageFactory func(remaining time.Duration, a Action) *Reply

// CooldownConfig is a cooldown policy.
type CooldownConfig struct {
	Enabled  bool
	Duration time.Duration
	Type     CooldownType
	// Check may veto the cooldown for one invocation by returning false.
	Check   func(CooldownCheck) bool
	Message CooldownMessageFactory
}

// CooldownOverride is an action-level cooldown setting. Build one with
// CooldownToggle or CooldownCustom.
type CooldownOverride struct {
	toggle *bool
	custom *CooldownConfig
}

// CooldownToggle overrides only whether the cooldown applies.
func CooldownToggle(enabled bool) *CooldownOverride {
	return &CooldownOverride{toggle: &enabled}
}

// CooldownCustom replaces enabled state, duration and message. Type and
// Check of cfg are ignored.
func CooldownCustom(cfg CooldownConfig) *CooldownOverride {
	return &CooldownOverride{custom: &cfg}
}

// DefaultCooldownConfig is a 3 second global cooldown.
func DefaultCooldownConfig() CooldownConfig {
	return CooldownConfig{
		Enabled:  true,
		Duration: 3 * time.Second,
		Type:     CooldownGlobal,
		Message:  DefaultCooldownMessage,
	}
}

// DefaultCooldownMessage tells the actor which action is cooling down and for how long.
func DefaultCooldownMessage(remaining time.Duration, a Action) *Reply {
	name := "Unknown"
	if a != nil && a.Key() != "" {
		name = a.Key()
	}
	return notice("Cooldown", fmt.Sprintf(
		"You are on cooldown for the action `%s`. Please wait %dms before using it again.",
		name, remaining.Milliseconds(),
	), 0xE74C3C)
}

// resolveCooldown applies an action override to the global policy.
func resolveCooldown(global CooldownConfig, o *CooldownOverride) (bool, time.Duration, CooldownMessageFactory) {
	enabled, d, msg := global.Enabled, global.Duration, global.Message

	if global.Type == CooldownSpecified && o == nil {
		return false, d, msg
	}
	if o != nil {
		switch {
		case o.custom != nil:
			enabled, d = o.custom.Enabled, o.custom.Duration
			if o.custom.Message != nil {
				msg = o.custom.Message
			}
		case o.toggle != nil:
			enabled = *o.toggle
		}
	}
	if msg == nil {
		msg = DefaultCooldownMessage
	}
	return enabled, d, msg
}

// cooldownGate blocks the invocation while its actor is cooling down for the
// action, and starts the cooldown otherwise.
func (r *Router) cooldownGate(inv invocation, check CooldownCheck) bool {
	global := r.Cooldown()
	a := inv.action()

	enabled, d, msg := resolveCooldown(global, a.gating().Cooldown)
	if enabled && global.Check != nil {
		enabled = global.Check(check)
	}
	if !enabled || d <= 0 {
		return false
	}

	key := r.cooldowns.Key(a.Key(), cooldown.ScopeUser, inv.actorID())
	left, onCooldown := r.cooldowns.Remaining(key)
	if !onCooldown {
		r.cooldowns.Set(key, d)
		return false
	}

	del, err := inv.respond(msg(left, a))
	if err != nil {
		r.log.Debug().Err(err).Str("action", a.Key()).Msg("cooldown notice failed")
		return true
	}
	r.jobs.After("delete-cooldown:"+key, left, func() {
		if err := del(); err != nil {
			r.log.Debug().Err(err).Str("action", a.Key()).Msg("failed to delete cooldown notice")
		}
	})
	return true
}
