package discord

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/dtscommands/pkg/retrylimit"
	"github.com/keshon/dtscommands/pkg/util"
)

var errNoAppID = errors.New("sync commands: application ID unknown")

// globalScope is the hash cache key for globally registered commands.
const globalScope = "global"

// syncWorkers bounds concurrent per-guild overwrites.
const syncWorkers = 2

// CommandAPI pushes application command definitions to Discord.
type CommandAPI interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// HashStore caches definition hashes per sync scope.
type HashStore interface {
	CommandHashes(scope string) (map[string]string, error)
	SetCommandHashes(scope string, hashes map[string]string)
}

// syncer overwrites the registered slash commands of each scope whose
// definitions changed since the last successful sync.
type syncer struct {
	api     CommandAPI
	store   HashStore
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig
	log     zerolog.Logger
}

func newSyncer(api CommandAPI, store HashStore, log zerolog.Logger) *syncer {
	retry := retrylimit.DefaultRetryConfig()
	retry.Logger = log
	return &syncer{
		api:     api,
		store:   store,
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
		retry:   retry,
		log:     log,
	}
}

// sync pushes defs globally, or to each guild in guilds when any are given.
// It returns the number of scopes actually overwritten.
func (s *syncer) sync(ctx context.Context, appID string, guilds []string, defs []*discordgo.ApplicationCommand) (int, error) {
	if appID == "" {
		return 0, errNoAppID
	}
	if defs == nil {
		defs = []*discordgo.ApplicationCommand{}
	}

	scopes := guilds
	if len(scopes) == 0 {
		scopes = []string{""}
	}
	hashes := hashDefinitions(defs)

	var pushed atomic.Int64
	err := util.Parallel(ctx, scopes, syncWorkers, func(ctx context.Context, guildID string) error {
		scope := guildID
		if scope == "" {
			scope = globalScope
		}

		if s.store != nil {
			cached, err := s.store.CommandHashes(scope)
			if err != nil {
				s.log.Warn().Err(err).Str("scope", scope).Msg("could not read command hashes, forcing sync")
			} else if maps.Equal(cached, hashes) {
				s.log.Debug().Str("scope", scope).Msg("slash commands unchanged")
				return nil
			}
		}

		err := retrylimit.WithRetryConfig(ctx, func() error {
			_, err := s.api.ApplicationCommandBulkOverwrite(appID, guildID, defs)
			return err
		}, s.limiter, s.retry)
		if err != nil {
			return fmt.Errorf("overwrite commands for %s: %w", scope, err)
		}

		if s.store != nil {
			s.store.SetCommandHashes(scope, hashes)
		}
		pushed.Add(1)
		s.log.Info().Str("scope", scope).Int("commands", len(defs)).Msg("slash commands synced")
		return nil
	})
	return int(pushed.Load()), err
}
