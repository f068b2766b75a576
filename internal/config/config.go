// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingToken is returned by Validate when no Discord token is configured.
var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Config is the deployment configuration of a bot built on the framework.
// Values come from the environment (and .env), then an optional YAML file
// overrides them. The token is only ever read from the environment.
type Config struct {
	DiscordToken       string    `env:"DISCORD_TOKEN" yaml:"-"`
	Prefix             string    `env:"PREFIX" envDefault:"!" yaml:"prefix"`
	AdditionalPrefixes []string  `env:"ADDITIONAL_PREFIXES" envSeparator:"," yaml:"additionalPrefixes"`
	Owners             []string  `env:"OWNERS" envSeparator:"," yaml:"owners"`
	BetaTesters        []string  `env:"BETA_TESTERS" envSeparator:"," yaml:"betaTesters"`
	TestServers        []string  `env:"TEST_SERVERS" envSeparator:"," yaml:"testServers"`
	Managers           []Manager `env:"MANAGERS" envSeparator:"," yaml:"managers"`
	MentionMessage     string    `env:"MENTION_MESSAGE" yaml:"mentionMessage"`
	StoragePath        string    `env:"STORAGE_PATH" envDefault:"data/datastore.json" yaml:"storagePath"`
	SyncCommands       bool      `env:"SYNC_COMMANDS" envDefault:"true" yaml:"syncCommands"`
	ShardID            int       `env:"SHARD_ID" yaml:"shardId"`
	ShardCount         int       `env:"SHARD_COUNT" envDefault:"1" yaml:"shardCount"`
	Theme              Theme     `envPrefix:"THEME_" yaml:"theme"`
	Cooldown           Cooldown  `envPrefix:"COOLDOWN_" yaml:"cooldown"`
	Log                Log       `envPrefix:"LOG_" yaml:"log"`
}

// Manager grants manager rights to a role inside one guild.
// In the environment it is written as "guildID:roleID".
type Manager struct {
	GuildID string `yaml:"guildId"`
	RoleID  string `yaml:"roleId"`
}

// UnmarshalText parses "guildID:roleID".
func (m *Manager) UnmarshalText(text []byte) error {
	guild, role, ok := strings.Cut(string(text), ":")
	if !ok || guild == "" || role == "" {
		return fmt.Errorf("invalid manager %q, want guildID:roleID", text)
	}
	m.GuildID, m.RoleID = guild, role
	return nil
}

// Theme holds the embed colors used by framework notices.
type Theme struct {
	Success   int `env:"SUCCESS" envDefault:"65280" yaml:"success"`
	Error     int `env:"ERROR" envDefault:"16711680" yaml:"error"`
	Warning   int `env:"WARNING" envDefault:"16776960" yaml:"warning"`
	Primary   int `env:"PRIMARY" envDefault:"255" yaml:"primary"`
	Secondary int `env:"SECONDARY" envDefault:"65535" yaml:"secondary"`
}

// Cooldown is the process-wide cooldown policy.
type Cooldown struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true" yaml:"enabled"`
	Duration time.Duration `env:"DURATION" envDefault:"3s" yaml:"duration"`
	Type     string        `env:"TYPE" envDefault:"global" yaml:"type"`
}

// Log configures console and file logging.
type Log struct {
	Level      string `env:"LEVEL" envDefault:"info" yaml:"level"`
	Console    bool   `env:"CONSOLE" envDefault:"true" yaml:"console"`
	File       string `env:"FILE" yaml:"file"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"10" yaml:"maxSizeMB"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3" yaml:"maxBackups"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28" yaml:"maxAgeDays"`
}

// Load reads .env (if present), parses the environment and then overlays the
// YAML file at path. An empty path skips the overlay.
func Load(path string) (*Config, error) {
	// a missing .env is normal in containers
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	if cfg.MentionMessage == "" {
		cfg.MentionMessage = fmt.Sprintf("My prefix is `%s`", cfg.Prefix)
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports configuration that cannot run a bot.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	if c.Prefix == "" {
		return errors.New("prefix must not be empty")
	}
	switch c.Cooldown.Type {
	case "global", "specified":
	default:
		return fmt.Errorf("unknown cooldown type %q", c.Cooldown.Type)
	}
	if c.Cooldown.Duration < 0 {
		return errors.New("cooldown duration must not be negative")
	}
	if c.ShardCount < 0 || c.ShardID < 0 || c.ShardID >= max(c.ShardCount, 1) {
		return fmt.Errorf("shard %d is outside shard count %d", c.ShardID, c.ShardCount)
	}
	return nil
}
