package discord

import (
	"github.com/rs/zerolog"

	"github.com/keshon/dtscommands/internal/config"
	"github.com/keshon/dtscommands/internal/core"
)

// RouterOptions translates the deployment configuration into router options.
// rec may be nil.
func RouterOptions(cfg *config.Config, log zerolog.Logger, rec core.Recorder) core.Options {
	managers := make([]core.ManagerRole, len(cfg.Managers))
	for i, m := range cfg.Managers {
		managers[i] = core.ManagerRole{GuildID: m.GuildID, RoleID: m.RoleID}
	}

	o := core.Options{
		Prefixes:       core.StaticPrefixes{Main: cfg.Prefix, Additional: cfg.AdditionalPrefixes},
		Owners:         cfg.Owners,
		BetaTesters:    cfg.BetaTesters,
		Managers:       managers,
		MentionMessage: cfg.MentionMessage,
		Theme: core.Theme{
			Success:   cfg.Theme.Success,
			Error:     cfg.Theme.Error,
			Warning:   cfg.Theme.Warning,
			Primary:   cfg.Theme.Primary,
			Secondary: cfg.Theme.Secondary,
		},
		Cooldown: core.CooldownConfig{
			Enabled:  cfg.Cooldown.Enabled,
			Duration: cfg.Cooldown.Duration,
			Type:     core.CooldownType(cfg.Cooldown.Type),
			Message:  core.DefaultCooldownMessage,
		},
		Logger: log,
	}
	if rec != nil {
		o.Recorder = rec
	}
	return o
}
