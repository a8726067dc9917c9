// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package config loads charcore configuration from defaults, a YAML file
// and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/CypherCore/CypherCore-sub002/internal/instance"
	"github.com/CypherCore/CypherCore-sub002/internal/xdg"
)

// DatabaseConfig locates the two durable stores.
type DatabaseConfig struct {
	CharacterURL string        `koanf:"character_url"`
	LoginURL     string        `koanf:"login_url"`
	MaxRetries   uint64        `koanf:"max_retries"`
	RetryBase    time.Duration `koanf:"retry_base"`
}

// SaveConfig controls autosave.
type SaveConfig struct {
	Interval      time.Duration `koanf:"interval"`
	DeferredRetry time.Duration `koanf:"deferred_retry"`
}

// InstanceConfig feeds the instance entry gate.
type InstanceConfig struct {
	MaxPerHour           int  `koanf:"max_per_hour"`
	ForbidCombatTransfer bool `koanf:"forbid_combat_transfer"`
	RequireRaidGroup     bool `koanf:"require_raid_group"`
}

// ContentConfig locates the game-content file.
type ContentConfig struct {
	Path string `koanf:"path"`
}

// NamesConfig lists reserved-name patterns.
type NamesConfig struct {
	Reserved []string `koanf:"reserved"`
}

// MetricsConfig sets the observability listen address. Empty disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// GRPCConfig sets the gRPC health listen address.
type GRPCConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig selects the log format, "json" or "text".
type LogConfig struct {
	Format string `koanf:"format"`
}

// Config is the full charcore configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Save     SaveConfig     `koanf:"save"`
	Instance InstanceConfig `koanf:"instance"`
	Content  ContentConfig  `koanf:"content"`
	Names    NamesConfig    `koanf:"names"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	GRPC     GRPCConfig     `koanf:"grpc"`
	Log      LogConfig      `koanf:"log"`
}

// Gate returns the entry gate settings.
func (c *Config) Gate() instance.GateConfig {
	return instance.GateConfig{
		MaxPerHour:           c.Instance.MaxPerHour,
		ForbidCombatTransfer: c.Instance.ForbidCombatTransfer,
		RequireRaidGroup:     c.Instance.RequireRaidGroup,
	}
}

// Validate checks values no default can repair.
func (c *Config) Validate() error {
	switch {
	case c.Log.Format != "json" && c.Log.Format != "text":
		return oops.Code("CONFIG_INVALID").With("key", "log.format").With("value", c.Log.Format).
			Errorf("log format must be json or text")
	case c.Save.Interval < 0:
		return oops.Code("CONFIG_INVALID").With("key", "save.interval").Errorf("autosave interval is negative")
	case c.Save.DeferredRetry <= 0:
		return oops.Code("CONFIG_INVALID").With("key", "save.deferred_retry").Errorf("deferred retry must be positive")
	case c.Instance.MaxPerHour < 0:
		return oops.Code("CONFIG_INVALID").With("key", "instance.max_per_hour").Errorf("instance cap is negative")
	}
	return nil
}

// RequireDatabase checks that both store URLs are set.
func (c *Config) RequireDatabase() error {
	if c.Database.CharacterURL == "" || c.Database.LoginURL == "" {
		return oops.Code("CONFIG_INVALID").With("key", "database").
			Errorf("database.character_url and database.login_url are required")
	}
	return nil
}

var defaults = map[string]any{
	"database.character_url":          "",
	"database.login_url":              "",
	"database.max_retries":            uint64(3),
	"database.retry_base":             50 * time.Millisecond,
	"save.interval":                   15 * time.Minute,
	"save.deferred_retry":             100 * time.Millisecond,
	"instance.max_per_hour":           5,
	"instance.forbid_combat_transfer": true,
	"instance.require_raid_group":     true,
	"content.path":                    "",
	"names.reserved":                  []string{},
	"metrics.addr":                    "127.0.0.1:9100",
	"grpc.addr":                       "127.0.0.1:9000",
	"log.format":                      "json",
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"character-db":  "database.character_url",
	"login-db":      "database.login_url",
	"content":       "content.path",
	"save-interval": "save.interval",
	"metrics-addr":  "metrics.addr",
	"grpc-addr":     "grpc.addr",
	"log-format":    "log.format",
}

// RegisterFlags adds the flags Load reads to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("character-db", "", "character database URL")
	flags.String("login-db", "", "login database URL")
	flags.String("content", "", "game-content file")
	flags.Duration("save-interval", 15*time.Minute, "autosave interval, 0 to disable")
	flags.String("metrics-addr", "127.0.0.1:9100", "metrics and health listen address")
	flags.String("grpc-addr", "127.0.0.1:9000", "gRPC health listen address")
	flags.String("log-format", "json", "log format (json or text)")
}

// Load builds the configuration. An empty path reads the XDG default file
// when it exists; a named file must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, oops.Code("CONFIG_DEFAULTS_FAILED").With("key", key).Wrap(err)
		}
	}

	explicit := path != ""
	if !explicit {
		p, err := xdg.ConfigFile()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, oops.Code("CONFIG_NOT_FOUND").With("path", path).Wrap(err)
			}
		} else if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	if cfg.Content.Path == "" {
		if p, err := xdg.ContentFile(); err == nil {
			cfg.Content.Path = p
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
