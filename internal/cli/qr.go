package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/eventpass/pkg/barcode"
	"github.com/matzehuels/eventpass/pkg/code"
)

// qrCommand creates the qr command.
func (c *CLI) qrCommand() *cobra.Command {
	var (
		output  string
		size    int
		margin  int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "qr [code]",
		Short: "Write the QR PNG for a registration code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			payload := code.Normalize(args[0])
			data, cached, err := runner.QR(ctx, payload, size, margin)
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("qr-%s.png", payload)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			if !code.Valid(payload) {
				printWarning("%q is not a registration code; encoded anyway", payload)
			}
			printSuccess("QR for %s %s", StyleHighlight.Render(payload), cacheLabel(cached))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default qr-<code>.png)")
	cmd.Flags().IntVar(&size, "size", barcode.DisplaySize, "image size in pixels")
	cmd.Flags().IntVar(&margin, "margin", barcode.DisplayMargin, "quiet zone in modules")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
