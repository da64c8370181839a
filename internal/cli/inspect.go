package cli

import (
	"github.com/gnosisguild/mech-go/internal/cli/render"
	"github.com/gnosisguild/mech-go/internal/introspect"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "inspect <address|0xbytecode>...",
		Short: "Tell which targets are mechs and decode their context",
		Long: `Inspect addresses or raw bytecode and report which are mechs.

Addresses are fetched from the network in parallel; bytecode arguments
(creation or runtime) are parsed offline.`,
		Example: `  mech inspect 0x4E58f1b8D6697C4B57E73906b403A48958e460e2 --network mainnet
  mech inspect 0x363d3d373d3d3d363d73...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			results, err := app.InspectMechs.Run(cmd.Context(), usecase.InspectMechsParams{
				Targets:     args,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}
			return render.NewInspectRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(results)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", introspect.DefaultConcurrency, "Maximum parallel code fetches")
	return cmd
}
