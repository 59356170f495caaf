// Package cli implements the eventpass command-line interface.
//
// # Commands
//
//   - render: Render a pass from a TOML or JSON input file to PDF, PNG or SVG
//   - qr: Write the QR PNG for a registration code
//   - code: Generate registration codes
//   - serve: Run the HTTP API
//   - checkin: Interactive check-in desk
//   - cache: Inspect and clear the local artifact cache
//   - config: Print the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/eventpass/pkg/buildinfo"
	"github.com/matzehuels/eventpass/pkg/cache"
	"github.com/matzehuels/eventpass/pkg/config"
	"github.com/matzehuels/eventpass/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "eventpass"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is bound to the --config flag.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Eventpass issues and checks event passes",
		Long:         `Eventpass registers attendees, renders their printable event passes (PDF, PNG, SVG) with a scannable QR code, and checks them in at the door.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (TOML)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.qrCommand())
	root.AddCommand(c.codeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.checkinCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config (if any) and the environment, then applies the
// configured log level unless --verbose already selected debug.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		level, _ := log.ParseLevel(cfg.Log.Level)
		c.SetLogLevel(level)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	opts := cfg.CacheOptions()
	if noCache {
		opts.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.Logos.Timeout = cfg.Pass.LogoTimeout
	runner.DispatchTimeout = cfg.Delivery.Timeout
	return runner, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPDF}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
