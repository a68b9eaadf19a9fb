package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davemaier/orbitmap/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, "file")
	}
	if cfg.Server.Addr != ":8422" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8422")
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "memory")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
[engine]
discard_collapsed = true

[engine.orbit]
base_radius = 200.0

[engine.physics]
damping = 0.5

[cache]
backend = "none"

[server]
addr = ":9000"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Engine.DiscardCollapsed {
		t.Error("Engine.DiscardCollapsed not applied")
	}
	if cfg.Engine.Orbit.BaseRadius != 200 {
		t.Errorf("Orbit.BaseRadius = %v, want 200", cfg.Engine.Orbit.BaseRadius)
	}
	if cfg.Engine.Physics.Damping != 0.5 {
		t.Errorf("Physics.Damping = %v, want 0.5", cfg.Engine.Physics.Damping)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, "none")
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[engine\nbroken"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"redis without url", func(c *Config) { c.Cache.Backend = "redis" }, true},
		{"redis with url", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.RedisURL = "redis://localhost:6379/0"
		}, false},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"mongo without uri", func(c *Config) { c.Store.Backend = "mongo" }, true},
		{"unknown store backend", func(c *Config) { c.Store.Backend = "sqlite" }, true},
		{"damping out of range", func(c *Config) { c.Engine.Physics.Damping = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() returned wrong code: %v", err)
			}
		})
	}
}
