package cli

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gnosisguild/mech-go/internal/abicodec"
	"github.com/gnosisguild/mech-go/internal/cli/render"
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/signature"
	"github.com/spf13/cobra"
)

// NewSignatureCmd creates the signature command group
func NewSignatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signature",
		Short: "Encode, decode and verify EIP-1271 mech signatures",
		Long: `A mech signature wraps the signature of the mech's operator so that an
EIP-1271 verifier asks the mech itself whether the signature is valid.`,
	}

	cmd.AddCommand(newSignatureEncodeCmd(), newSignatureDecodeCmd(), newSignatureVerifyCmd())
	return cmd
}

func newSignatureEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <mech> <operator-signature>",
		Short: "Wrap an operator signature as a mech signature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			mech, err := abicodec.ParseAddress(args[0])
			if err != nil {
				return err
			}
			inner, err := abicodec.ParseHex(args[1])
			if err != nil {
				return err
			}
			return render.NewSignatureRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderEncoded(signature.Encode(mech, inner))
		},
	}
}

func newSignatureDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <signature>",
		Short: "Unwrap a mech signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			sig, err := abicodec.ParseHex(args[0])
			if err != nil {
				return err
			}
			env, err := signature.Decode(sig)
			if err != nil {
				return err
			}
			return render.NewSignatureRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderEnvelope(env)
		},
	}
}

func newSignatureVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <hash> <signature>",
		Short: "Ask the mech whether it accepts a signature for hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			raw, err := abicodec.ParseHex(args[0])
			if err != nil {
				return err
			}
			if len(raw) != common.HashLength {
				return domain.InvalidArgument("hash must be 32 bytes, got %d", len(raw))
			}
			hash := common.BytesToHash(raw)
			sig, err := abicodec.ParseHex(args[1])
			if err != nil {
				return err
			}
			result, err := app.VerifySignature.Run(cmd.Context(), hash, sig)
			if err != nil {
				return err
			}
			return render.NewSignatureRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderVerify(result)
		},
	}
}
