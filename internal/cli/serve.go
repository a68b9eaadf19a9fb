package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/davemaier/orbitmap/internal/server"
	"github.com/davemaier/orbitmap/pkg/cache"
	"github.com/davemaier/orbitmap/pkg/config"
	"github.com/davemaier/orbitmap/pkg/pipeline"
	"github.com/davemaier/orbitmap/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API server",
		Long: `Run the layout HTTP API server.

The server exposes stateless layout and render endpoints plus a saved-map
API backed by the configured store. Configuration comes from
~/.config/orbitmap/config.toml (or --config); --addr overrides the
configured listen address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.toml")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	cch, err := c.serveCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	st, err := c.serveStore(ctx, cfg.Store)
	if err != nil {
		cch.Close()
		return fmt.Errorf("initialize store: %w", err)
	}
	defer func() {
		// The serve context is already cancelled during shutdown; give the
		// store its own deadline to disconnect cleanly.
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("store close", "err", err)
		}
	}()

	runner := pipeline.NewRunner(cch, nil, c.Logger)
	defer runner.Close()

	base := pipeline.Options{Engine: cfg.Engine}
	srv := server.New(runner, st, base, c.Logger)

	c.Logger.Info("starting server", "addr", addr,
		"cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return srv.ListenAndServe(ctx, addr)
}

func (c *CLI) serveCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	default: // file
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

func (c *CLI) serveStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Backend == "mongo" {
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	}
	return store.NewMemoryStore(), nil
}
