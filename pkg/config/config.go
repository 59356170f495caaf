// Package config loads eventpass settings from a TOML file and the
// environment.
//
// Precedence, lowest first: [Default], the file given to [Load], then
// EVENTPASS_* environment variables. A minimal file:
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[[events]]
//	id = "summit-2025"
//	name = "Annual Tech Summit"
//	start = 2025-03-01T09:00:00+05:30
//	end = 2025-03-01T17:00:00+05:30
//	venue = "Convention Hall A"
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/eventpass/pkg/cache"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/logo"
	"github.com/matzehuels/eventpass/pkg/pass"
	"github.com/matzehuels/eventpass/pkg/pipeline"
	"github.com/matzehuels/eventpass/pkg/registration"
	"github.com/matzehuels/eventpass/pkg/render/card/layout"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EVENTPASS_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Server   Server               `toml:"server"`
	Pass     Pass                 `toml:"pass"`
	Cache    Cache                `toml:"cache"`
	Store    Store                `toml:"store"`
	Delivery Delivery             `toml:"delivery"`
	Log      Log                  `toml:"log"`
	Events   []registration.Event `toml:"events"`
}

type Server struct {
	Addr string `toml:"addr"`
}

// Pass holds render settings shared by every pass.
type Pass struct {
	Template    string        `toml:"template"`
	Timezone    string        `toml:"timezone"`
	LogoURL     string        `toml:"logo_url"`
	LogoTimeout time.Duration `toml:"logo_timeout"`
}

type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

type Store struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type Delivery struct {
	Timeout time.Duration `toml:"timeout"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration: in-process store, local
// file cache, card template in the default event zone.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Pass: Pass{
			Template:    pipeline.DefaultTemplate,
			Timezone:    pass.DefaultTimezone,
			LogoTimeout: logo.DefaultTimeout,
		},
		Cache:    Cache{Backend: cache.BackendFile},
		Store:    Store{Backend: StoreMemory, Database: "eventpass"},
		Delivery: Delivery{Timeout: pipeline.DefaultDispatchTimeout},
		Log:      Log{Level: "info"},
	}
}

// Load reads path over Default and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %v", undecoded)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from EVENTPASS_* variables read via lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":      &c.Server.Addr,
		"TEMPLATE":  &c.Pass.Template,
		"TIMEZONE":  &c.Pass.Timezone,
		"LOGO_URL":  &c.Pass.LogoURL,
		"CACHE":     &c.Cache.Backend,
		"CACHE_DIR": &c.Cache.Dir,
		"REDIS_URL": &c.Cache.RedisURL,
		"STORE":     &c.Store.Backend,
		"MONGO_URI": &c.Store.MongoURI,
		"MONGO_DB":  &c.Store.Database,
		"LOG_LEVEL": &c.Log.Level,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field = strings.TrimSpace(v)
		}
	}

	durations := map[string]*time.Duration{
		"LOGO_TIMEOUT":     &c.Pass.LogoTimeout,
		"DISPATCH_TIMEOUT": &c.Delivery.Timeout,
	}
	for name, field := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
		}
		*field = d
	}
	return nil
}

// Validate checks values that would otherwise fail at first use.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log level")
	}
	if _, err := layout.Preset(c.Pass.Template); err != nil {
		return err
	}
	if _, err := pass.NewFormatter(c.Pass.Timezone); err != nil {
		return err
	}
	if c.Pass.LogoURL != "" {
		if err := errors.ValidateURL(c.Pass.LogoURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "pass.logo_url")
		}
	}
	if c.Pass.LogoTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "pass.logo_timeout must be positive")
	}
	if c.Delivery.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "delivery.timeout must be positive")
	}

	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}

	seen := make(map[string]bool, len(c.Events))
	for i, e := range c.Events {
		if e.ID == "" || e.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "events[%d]: id and name are required", i)
		}
		if seen[e.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "events[%d]: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// CacheOptions returns the options for cache.Open.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{Backend: c.Cache.Backend, Dir: c.Cache.Dir, RedisURL: c.Cache.RedisURL}
}

// PassOptions returns the pipeline options every pass is rendered with.
func (c Config) PassOptions() pipeline.Options {
	return pipeline.Options{Template: c.Pass.Template, Timezone: c.Pass.Timezone, LogoURL: c.Pass.LogoURL}
}

// Encode writes c as TOML.
func (c Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
