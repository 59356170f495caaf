package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/eventpass/pkg/config"
)

// checkinCommand runs the interactive check-in desk.
func (c *CLI) checkinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin",
		Short: "Run the interactive check-in desk",
		Long: `Run the interactive check-in desk.

Codes are read from the keyboard, so USB and Bluetooth scanners that type
the code followed by enter work without setup. Registrations are read from
the configured store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Backend == config.StoreMemory {
				printWarning("The memory store starts empty; set [store] backend = \"mongo\" to check in real registrations")
			}

			svc, _, closeFn, err := c.openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			final, err := tea.NewProgram(NewCheckinModel(ctx, svc), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("check-in desk: %w", err)
			}
			if m, ok := final.(CheckinModel); ok {
				printSuccess("Admitted %d of %d scans", m.Admitted, m.Scans)
			}
			return nil
		},
	}
}
