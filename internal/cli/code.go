package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/eventpass/pkg/code"
)

// codeCommand creates the code command.
func (c *CLI) codeCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Generate registration codes",
		Long:  `Generate distinct registration codes, one per line.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := generateCodes(cmd.Context(), count)
			if err != nil {
				return err
			}
			for _, c := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of codes")
	return cmd
}

// generateCodes returns n distinct codes.
func generateCodes(ctx context.Context, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("count must be at least 1")
	}
	seen := make(map[string]bool, n)
	exists := func(_ context.Context, c string) (bool, error) { return seen[c], nil }

	out := make([]string, 0, n)
	for range n {
		c, err := code.Unique(ctx, nil, exists, 0)
		if err != nil {
			return nil, err
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
