package cli

import (
	"github.com/gnosisguild/mech-go/internal/cli/render"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/spf13/cobra"
)

// NewFactoryCmd creates the factory command group
func NewFactoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factory",
		Short: "Bootstrap the singleton factory or deploy the mech factory",
	}

	cmd.AddCommand(newFactoryBootstrapCmd(), newFactoryDeployCmd())
	return cmd
}

func newFactoryBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Deploy the ERC-2470 singleton factory on a fresh chain",
		Long: `Deploy the ERC-2470 singleton factory from its pre-signed transaction.

The well-known deployer account is funded from --private-key first when its
balance is too low. The EIP-2470 keyless transaction is used unless
singleton_factory.raw_deploy_tx is set in mech.toml. Nothing is sent when the
factory already has code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.BootstrapFactory.Run(cmd.Context())
			if err != nil {
				return err
			}
			return render.NewDeploymentRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderBootstrap(result)
		},
	}
}

func newFactoryDeployCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the mech factory through the singleton factory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.DeployMastercopy.Run(cmd.Context(), usecase.DeployMastercopyParams{
				FactoryOnly: true,
				DryRun:      dryRun,
			})
			if err != nil {
				return err
			}
			return render.NewDeploymentRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderDeployResults(result.Deployments)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pre-flight checks without sending the transaction")
	return cmd
}
