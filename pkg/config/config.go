// Package config loads application configuration from TOML files.
//
// Configuration is layered: compiled-in defaults, then an optional config
// file, then explicit overrides from CLI flags. Every section is optional;
// an empty file yields the same behavior as no file at all.
//
// A full config file looks like:
//
//	[engine]
//	discard_collapsed = false
//
//	[engine.orbit]
//	base_radius = 140.0
//	depth_increment = 50.0
//
//	[engine.physics]
//	damping = 0.6
//	repulsion = 2400.0
//
//	[cache]
//	backend = "file"          # file, redis, or none
//	dir = "~/.cache/orbitmap"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "memory"        # memory or mongo
//	mongo_uri = "mongodb://localhost:27017"
//	database = "orbitmap"
//
//	[server]
//	addr = ":8422"
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/davemaier/orbitmap/pkg/engine"
	"github.com/davemaier/orbitmap/pkg/errors"
)

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// StoreConfig selects and configures the saved-map store backend.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Config is the full application configuration.
type Config struct {
	Engine engine.Config `toml:"engine"`
	Cache  CacheConfig   `toml:"cache"`
	Store  StoreConfig   `toml:"store"`
	Server ServerConfig  `toml:"server"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend: "file",
		},
		Store: StoreConfig{
			Backend:  "memory",
			Database: "orbitmap",
		},
		Server: ServerConfig{
			Addr: ":8422",
		},
	}
}

// Load reads a TOML config file and merges it over the defaults. A missing
// file is not an error when path is empty (no file requested); an explicit
// path that does not exist is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, ok := defaultPath()
		if !ok {
			return cfg, nil
		}
		path = p
	} else if err := validateExplicit(path); err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the TOML decoder cannot express.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis, or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
	}

	switch c.Store.Backend {
	case "", "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want memory or mongo)", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store backend mongo requires mongo_uri")
	}

	if d := c.Engine.Physics.Damping; d < 0 || d > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "physics damping must be in [0, 1], got %g", d)
	}
	return nil
}

// defaultPath returns the conventional config location if a file exists
// there.
func defaultPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	p := filepath.Join(home, ".config", "orbitmap", "config.toml")
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

func validateExplicit(path string) error {
	if filepath.IsAbs(path) {
		return nil
	}
	return errors.ValidatePath(path)
}
