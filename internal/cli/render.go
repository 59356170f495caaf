package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/eventpass/pkg/code"
	"github.com/matzehuels/eventpass/pkg/errors"
	"github.com/matzehuels/eventpass/pkg/pass"
	"github.com/matzehuels/eventpass/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	outDir   string
	formats  []string
	template string
	timezone string
	logoURL  string
	code     string
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [input.toml|input.json]",
		Short: "Render a pass from an input file",
		Long: `Render a pass from a TOML or JSON input file.

If the input has no code, a fresh one is generated and printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): pdf (default), png, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template preset: card (default), preview")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "zone event dates are shown in")
	cmd.Flags().StringVar(&opts.logoURL, "logo", "", "logo URL (overrides config)")
	cmd.Flags().StringVar(&opts.code, "code", "", "registration code (overrides input)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	in, err := readInput(path)
	if err != nil {
		return err
	}
	if opts.code != "" {
		in.Code = opts.code
	}
	generated := false
	if in.Code == "" {
		in.Code = code.Generate()
		generated = true
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := cfg.PassOptions()
	pipeOpts.Formats = opts.formats
	pipeOpts.Refresh = opts.refresh
	pipeOpts.Logger = loggerFromContext(ctx)
	if opts.template != "" {
		pipeOpts.Template = opts.template
	}
	if opts.timezone != "" {
		pipeOpts.Timezone = opts.timezone
	}
	if opts.logoURL != "" {
		pipeOpts.LogoURL = opts.logoURL
	}

	spinner := newSpinnerWithContext(ctx, "Rendering pass...")
	spinner.Start()
	res, err := runner.Render(ctx, in, pipeOpts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	printSuccess("Pass %s", StyleHighlight.Render(res.Code))
	if generated {
		printDetail("Generated a new code (none in input)")
	}
	printPassStats(res)
	if res.PackageErr != nil {
		printWarning("PDF packaging failed, wrote PNG instead: %s", errors.UserMessage(res.PackageErr))
	}
	for _, f := range []string{pipeline.FormatPDF, pipeline.FormatPNG, pipeline.FormatSVG} {
		data, ok := res.Artifacts[f]
		if !ok {
			continue
		}
		out := filepath.Join(opts.outDir, res.Filename(f))
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printFile(out)
	}
	return nil
}

// readInput decodes a pass input from TOML, or JSON for ".json" files.
func readInput(path string) (pass.Input, error) {
	var in pass.Input
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read input: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &in)
	} else {
		_, err = toml.Decode(string(data), &in)
	}
	if err != nil {
		return in, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", filepath.Base(path))
	}
	return in, nil
}
