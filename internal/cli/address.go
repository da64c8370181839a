package cli

import (
	"fmt"

	"github.com/gnosisguild/mech-go/internal/cli/render"
	"github.com/spf13/cobra"
)

// NewAddressCmd creates the address command
func NewAddressCmd() *cobra.Command {
	var flags contextFlags

	cmd := &cobra.Command{
		Use:   "address [variant]",
		Short: "Predict the address of a mech",
		Long: fmt.Sprintf(`Predict the CREATE2 address of a mech without touching the network.

Variants: %s`, variantNames()),
		Example: `  mech address erc721 --token 0x22c1f6050e56d2876009903609a2cc3fef83b415 --token-id 1
  mech address erc1155-threshold --token 0x... --token-ids 1,2 --min-balances 10,5 --min-total-balance 20
  mech address erc721-tokenbound --chain-id 1 --token 0x... --token-id 7
  mech address zodiac --modules 0x...,0x...`,
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

			d, err := app.PredictAddress.Mech(dc)
			if err != nil {
				return err
			}
			return render.NewDeploymentRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderPrediction(d)
		},
	}

	flags.register(cmd)
	return cmd
}
