package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/eventpass/pkg/config"
	"github.com/matzehuels/eventpass/pkg/observability"
	"github.com/matzehuels/eventpass/pkg/pipeline"
	"github.com/matzehuels/eventpass/pkg/registration"
	"github.com/matzehuels/eventpass/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	observability.NewLogHooks(c.Logger).Register()
	defer observability.Reset()

	svc, runner, closeFn, err := c.openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if len(cfg.Events) == 0 {
		printWarning("No events configured; registration is disabled")
	}
	printInfo("Serving %d event(s) on %s", len(cfg.Events), StyleHighlight.Render(cfg.Server.Addr))
	printDetail("store: %s · cache: %s", cfg.Store.Backend, cfg.Cache.Backend)

	srv := server.New(svc, runner, c.Logger, server.WithEvents(cfg.Events))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// openService builds the registration service over the configured store
// and cache. closeFn waits for pending deliveries before closing both.
func (c *CLI) openService(ctx context.Context, cfg config.Config) (*registration.Service, *pipeline.Runner, func(), error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		_ = store.Close(ctx)
		return nil, nil, nil, err
	}
	svc := registration.NewService(store, runner,
		registration.WithLogger(c.Logger),
		registration.WithPassOptions(cfg.PassOptions()),
		registration.WithDeliverer(pipeline.LogDeliverer{Logger: c.Logger}),
	)
	closeFn := func() {
		if err := runner.Close(); err != nil {
			c.Logger.Warn("close cache", "err", err)
		}
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}
	return svc, runner, closeFn, nil
}

func openStore(ctx context.Context, cfg config.Config) (registration.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMongo:
		return registration.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
	default:
		return registration.NewMemoryStore(), nil
	}
}
