package cli

import (
	"fmt"

	"github.com/gnosisguild/mech-go/internal/cli/render"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/spf13/cobra"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		flags  contextFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "deploy [variant]",
		Short: "Deploy a mech through its factory",
		Long: fmt.Sprintf(`Deploy a mech proxy. The mastercopy must already be deployed
(see "mech mastercopy deploy"). If the mech already exists nothing is sent.

Variants: %s`, variantNames()),
		Example: `  mech deploy erc721 --network sepolia --token 0x... --token-id 1
  mech deploy zodiac --rpc-url http://localhost:8545 --modules 0x... --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			variant, err := resolveVariant(cmd, app.Selector, args)
			if err != nil {
				return err
			}
			dc, err := flags.build(variant)
			if err != nil {
				return err
			}

			result, err := app.DeployMech.Run(cmd.Context(), usecase.DeployMechParams{
				Context: dc,
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}
			return render.NewDeploymentRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderDeployResult(result)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pre-flight checks and print the transaction without sending it")
	return cmd
}
