package cli

import (
	"fmt"

	"github.com/gnosisguild/mech-go/internal/cli/render"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/spf13/cobra"
)

// NewMastercopyCmd creates the mastercopy command group
func NewMastercopyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mastercopy",
		Short: "Predict or deploy mech mastercopies",
		Long: fmt.Sprintf(`Mastercopies are the implementation contracts every mech delegates to.
They are deployed through the ERC-2470 singleton factory with a zero salt,
so they land at the same address on every chain.

Variants: %s`, variantNames()),
	}

	cmd.AddCommand(newMastercopyAddressCmd(), newMastercopyDeployCmd())
	return cmd
}

func newMastercopyAddressCmd() *cobra.Command {
	var withFactory bool

	cmd := &cobra.Command{
		Use:   "address [variant...]",
		Short: "Predict mastercopy addresses (all variants by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			variants, err := parseVariants(args)
			if err != nil {
				return err
			}

			ds, err := app.PredictAddress.Mastercopies(variants, withFactory)
			if err != nil {
				return err
			}
			return render.NewDeploymentRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderPredictions(ds)
		},
	}

	cmd.Flags().BoolVar(&withFactory, "factory", false, "Include the mech factory")
	return cmd
}

func newMastercopyDeployCmd() *cobra.Command {
	var (
		withFactory bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "deploy [variant...]",
		Short: "Deploy mastercopies (all variants by default)",
		Long: `Deploy mastercopies through the ERC-2470 singleton factory.
Mastercopies that already exist are skipped, so the command can be re-run safely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			variants, err := parseVariants(args)
			if err != nil {
				return err
			}

			result, err := app.DeployMastercopy.Run(cmd.Context(), usecase.DeployMastercopyParams{
				Variants: variants,
				Factory:  withFactory,
				DryRun:   dryRun,
			})
			renderer := render.NewDeploymentRenderer(cmd.OutOrStdout(), app.Config.JSON)
			if result != nil && len(result.Deployments) > 0 {
				if rerr := renderer.RenderDeployResults(result.Deployments); rerr != nil && err == nil {
					err = rerr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&withFactory, "factory", false, "Also deploy the mech factory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pre-flight checks without sending transactions")
	return cmd
}
