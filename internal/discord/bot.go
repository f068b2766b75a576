// Package discord connects a core.Router to a live Discord gateway session.
package discord

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/dtscommands/internal/config"
	"github.com/keshon/dtscommands/internal/core"
	"github.com/keshon/dtscommands/internal/storage"
)

// Intents requested from the gateway. Message content is privileged and
// must be enabled for the application to use text commands in guilds.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// Bot is a Discord bot
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	router  *core.Router
	storage *storage.Storage
	syncer  *syncer
	log     zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	events map[string]int
}

// New creates the gateway session and a router configured from cfg. store
// may be nil, in which case command hashes and history are not persisted.
func New(cfg *config.Config, store *storage.Storage, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = Intents
	if cfg.ShardCount > 1 {
		dg.ShardID, dg.ShardCount = cfg.ShardID, cfg.ShardCount
	}

	var rec core.Recorder
	var hashes HashStore
	if store != nil {
		rec, hashes = store, store
	}

	log = log.With().Str("component", "discord").Logger()
	return &Bot{
		dg:      dg,
		cfg:     cfg,
		router:  core.New(RouterOptions(cfg, log, rec)),
		storage: store,
		syncer:  newSyncer(dg, hashes, log),
		log:     log,
		ctx:     context.Background(),
		events:  map[string]int{},
	}, nil
}

// Router returns the router actions are registered on.
func (b *Bot) Router() *core.Router { return b.router }

// AddEventHandler registers a lifecycle handler, any function discordgo
// accepts in AddHandler. name only labels it in stats. The returned function
// removes the handler.
func (b *Bot) AddEventHandler(name string, handler any) func() {
	remove := b.dg.AddHandler(handler)

	b.mu.Lock()
	b.events[name]++
	b.mu.Unlock()
	b.log.Debug().Str("event", name).Msg("event handler added")

	return func() {
		remove()
		b.mu.Lock()
		if b.events[name]--; b.events[name] <= 0 {
			delete(b.events, name)
		}
		b.mu.Unlock()
	}
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	b.AddEventHandler("ready", b.onReady)
	b.AddEventHandler("messageCreate", b.router.OnMessageCreate)
	b.AddEventHandler("interactionCreate", b.router.OnInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	b.router.Close()
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.router.SetSelfID(r.User.ID)
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")

	if !b.syncsCommands() {
		b.log.Info().Int("shard", b.dg.ShardID).Msg("slash command sync skipped")
		return
	}

	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	go func() {
		if err := b.SyncCommands(ctx, appID); err != nil {
			b.log.Error().Err(err).Msg("slash command sync failed")
		}
	}()
}

// syncsCommands reports whether this process owns command sync. Only shard 0
// pushes definitions.
func (b *Bot) syncsCommands() bool {
	return b.cfg.SyncCommands && b.dg.ShardID == 0
}

// SyncCommands pushes the registered slash definitions, per test server when
// any are configured and globally otherwise.
func (b *Bot) SyncCommands(ctx context.Context, appID string) error {
	_, err := b.syncer.sync(ctx, appID, b.cfg.TestServers, b.router.Registry().Definitions())
	return err
}

// Stats extends the router stats with lifecycle event handler counts.
type Stats struct {
	core.Stats
	EventHandlers map[string]int
}

func (b *Bot) Stats() Stats {
	b.mu.Lock()
	events := make(map[string]int, len(b.events))
	for k, v := range b.events {
		events[k] = v
	}
	b.mu.Unlock()
	return Stats{Stats: b.router.Stats(), EventHandlers: events}
}

// EventNames lists the labels of registered lifecycle handlers.
func (s Stats) EventNames() []string {
	names := make([]string, 0, len(s.EventHandlers))
	for n := range s.EventHandlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
