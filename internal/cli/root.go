package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gnosisguild/mech-go/internal/adapters/progress"
	"github.com/gnosisguild/mech-go/internal/app"
	"github.com/gnosisguild/mech-go/internal/config"
	"github.com/gnosisguild/mech-go/internal/logging"
	"github.com/gnosisguild/mech-go/internal/usecase"
	"github.com/spf13/cobra"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// InitAppFunc builds the app for a command; tests replace it
type InitAppFunc func(cmd *cobra.Command, sink usecase.ProgressSink) (*app.App, error)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultInitApp)
}

func defaultInitApp(cmd *cobra.Command, sink usecase.ProgressSink) (*app.App, error) {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		projectRoot = ""
	}
	v := config.SetupViper(projectRoot, cmd)
	return app.InitApp(v, sink)
}

func newRootCmd(initApp InitAppFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mech",
		Short: "Deterministic deployment and inspection of mech smart accounts",
		Long: `mech predicts, deploys and inspects mechs: smart accounts controlled by
whoever holds an NFT, enough ERC-1155 balance, or an enabled Zodiac module.

Every address is derived offline with CREATE2, so predicting one never needs an RPC.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			appInstance, err := initApp(cmd, newProgressSink(cmd))
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Add timeout if configured
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a, err := getApp(cmd); err == nil {
				a.Close()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable spinners and prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output JSON")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from foundry.toml [rpc_endpoints]")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC endpoint, overrides --network")
	rootCmd.PersistentFlags().String("private-key", "", "Deployer private key (or MECH_PRIVATE_KEY)")
	rootCmd.PersistentFlags().String("artifacts-dir", "", "Foundry artifacts directory (defaults to the profile's out)")
	rootCmd.PersistentFlags().String("profile", "", "Foundry profile (or FOUNDRY_PROFILE)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Give up after this long (default 5m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "singletons",
		Title: "Singleton Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, c := range []*cobra.Command{NewAddressCmd(), NewDeployCmd(), NewInspectCmd(), NewSignatureCmd()} {
		c.GroupID = "main"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewMastercopyCmd(), NewFactoryCmd()} {
		c.GroupID = "singletons"
		rootCmd.AddCommand(c)
	}

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command and prints errors the way the CLI reports them
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("Error: ")+err.Error())
		return 1
	}
	return 0
}

// newProgressSink picks the progress display for the invocation
func newProgressSink(cmd *cobra.Command) usecase.ProgressSink {
	debug, _ := cmd.Flags().GetBool("debug")
	jsonOut, _ := cmd.Flags().GetBool("json")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")

	switch {
	case debug:
		return progress.NewLogSink(logging.NewLoggerTo(cmd.ErrOrStderr(), true, ""))
	case jsonOut || nonInteractive || color.NoColor:
		return progress.NewNopSink()
	default:
		return progress.NewSpinnerProgressReporterTo(cmd.ErrOrStderr())
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	if cmd.Context() == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}
