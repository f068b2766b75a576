// Package core routes Discord messages and interactions to registered text
// commands, slash commands and buttons.
//
// Every invocation passes through a fixed chain of gates (guild-only checks,
// bot and actor permissions, cooldowns, owner, beta and manager restrictions,
// custom validations). The first gate that blocks answers the actor and stops
// the chain. Handlers that pass run on detached goroutines; a returned error
// or panic is turned into a notice for the actor.
package core

import (
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/dtscommands/pkg/cooldown"
	"github.com/keshon/dtscommands/pkg/jobmgr"
)

// Theme holds embed colors for framework notices.
type Theme struct {
	Success   int
	Error     int
	Warning   int
	Primary   int
	Secondary int
}

// DefaultTheme returns the stock colors.
func DefaultTheme() Theme {
	return Theme{
		Success:   0x00ff00,
		Error:     0xff0000,
		Warning:   0xffff00,
		Primary:   0x0000ff,
		Secondary: 0x00ffff,
	}
}

// ManagerRole grants manager rights to holders of RoleID in GuildID.
type ManagerRole struct {
	GuildID string
	RoleID  string
}

// Record describes one launched handler.
type Record struct {
	Kind      Kind
	Action    string
	GuildID   string
	ChannelID string
	UserID    string
	At        time.Time
}

// Recorder receives a Record every time a handler is launched.
type Recorder interface {
	RecordInvocation(rec Record) error
}

// Options configure a Router.
type Options struct {
	// Prefixes defaults to StaticPrefixes{Main: "!"}.
	Prefixes       PrefixResolver
	Owners         []string
	BetaTesters    []string
	Managers       []ManagerRole
	Theme          Theme
	MentionMessage string
	Cooldown       CooldownConfig
	Validations    []CustomValidation
	Logger         zerolog.Logger
	Clock          func() time.Time
	Recorder       Recorder
}

// Router owns the registries and runs the dispatch pipelines.
type Router struct {
	o         Options
	reg       *Registry
	cooldowns *cooldown.Store
	jobs      *jobmgr.Manager
	log       zerolog.Logger
	now       func() time.Time

	mu          sync.RWMutex
	cooldown    CooldownConfig
	validations []CustomValidation
	selfID      string
}

// New returns a Router with empty registries.
func New(o Options) *Router {
	if o.Prefixes == nil {
		o.Prefixes = StaticPrefixes{Main: "!"}
	}
	if o.Theme == (Theme{}) {
		o.Theme = DefaultTheme()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Cooldown.Type == "" {
		o.Cooldown.Type = CooldownGlobal
	}
	if o.Cooldown.Message == nil {
		o.Cooldown.Message = DefaultCooldownMessage
	}

	log := o.Logger.With().Str("component", "router").Logger()
	r := &Router{
		o:           o,
		reg:         newRegistry(),
		cooldowns:   cooldown.NewStore(cooldown.WithClock(o.Clock)),
		log:         log,
		now:         o.Clock,
		cooldown:    o.Cooldown,
		validations: slices.Clone(o.Validations),
	}
	r.jobs = jobmgr.NewManager(func(msg string) {
		log.Trace().Str("job", msg).Msg("job status")
	})
	return r
}

// Registry returns the router's action tables.
func (r *Router) Registry() *Registry { return r.reg }

// SetSelfID records the bot's user ID, used for mention prefixes and
// channel permission lookups.
func (r *Router) SetSelfID(id string) {
	r.mu.Lock()
	r.selfID = id
	r.mu.Unlock()
}

func (r *Router) self() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selfID
}

// OnMessageCreate is a discordgo handler for message events.
func (r *Router) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	r.HandleMessage(s, m)
}

// OnInteractionCreate is a discordgo handler for interaction events.
func (r *Router) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r.HandleInteraction(s, i)
}

// HandleInteraction routes chat input commands and button presses. Other
// interaction types are ignored.
func (r *Router) HandleInteraction(s Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().CommandType == discordgo.ChatApplicationCommand {
			r.handleSlash(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().ComponentType == discordgo.ButtonComponent {
			r.handleButton(s, i)
		}
	}
}

// SetCooldown replaces the process-wide cooldown policy.
func (r *Router) SetCooldown(cfg CooldownConfig) {
	if cfg.Type == "" {
		cfg.Type = CooldownGlobal
	}
	if cfg.Message == nil {
		cfg.Message = DefaultCooldownMessage
	}
	r.mu.Lock()
	r.cooldown = cfg
	r.mu.Unlock()
}

// Cooldown returns the process-wide cooldown policy.
func (r *Router) Cooldown() CooldownConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cooldown
}

// ClearCooldown lifts a running cooldown of actorID for an action key.
func (r *Router) ClearCooldown(actionKey, actorID string) {
	r.cooldowns.Clear(r.cooldowns.Key(actionKey, cooldown.ScopeUser, actorID))
}

// AddValidation registers a custom validation, replacing one with the same name.
func (r *Router) AddValidation(v CustomValidation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.validations {
		if r.validations[i].Name == v.Name {
			r.validations[i] = v
			return
		}
	}
	r.validations = append(r.validations, v)
}

// RemoveValidation unregisters a custom validation by name.
func (r *Router) RemoveValidation(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.validations {
		if r.validations[i].Name == name {
			r.validations = slices.Delete(r.validations, i, i+1)
			return true
		}
	}
	return false
}

// SetValidations replaces every custom validation.
func (r *Router) SetValidations(vs []CustomValidation) {
	r.mu.Lock()
	r.validations = slices.Clone(vs)
	r.mu.Unlock()
}

// Validations returns a copy of the registered custom validations.
func (r *Router) Validations() []CustomValidation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.validations)
}

func (r *Router) validation(name string) (CustomValidation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.validations {
		if v.Name == name {
			return v, true
		}
	}
	return CustomValidation{}, false
}

// IsOwner reports whether id is a configured owner.
func (r *Router) IsOwner(id string) bool {
	return id != "" && slices.Contains(r.o.Owners, id)
}

// IsBetaTester reports whether id may use beta actions. Owners always can.
func (r *Router) IsBetaTester(id string) bool {
	return id != "" && (slices.Contains(r.o.BetaTesters, id) || r.IsOwner(id))
}

// Theme returns the notice colors.
func (r *Router) Theme() Theme { return r.o.Theme }

// Stats is a snapshot of registry sizes and runtime state.
type Stats struct {
	Counts
	Validations     int
	ActiveCooldowns int
	RunningHandlers int
	PendingTimers   int
	// Jobs names the running handlers.
	Jobs string
}

func (r *Router) Stats() Stats {
	r.cooldowns.CleanupExpired()
	return Stats{
		Counts:          r.reg.Counts(),
		Validations:     len(r.Validations()),
		ActiveCooldowns: r.cooldowns.Len(),
		RunningHandlers: len(r.jobs.List()),
		PendingTimers:   r.jobs.Pending(),
		Jobs:            r.jobs.Status(),
	}
}

// Wait blocks until every launched handler has returned.
func (r *Router) Wait() { r.jobs.Wait() }

// Close drops pending notice deletions and waits for running handlers.
func (r *Router) Close() {
	dropped := r.jobs.Stop()
	r.jobs.Wait()
	r.log.Debug().Int("dropped_timers", dropped).Msg("router closed")
}
