package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := NewRootCmd(version)
	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// NewRootCmd builds the full command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "cerror",
		Short:         "Inspect kind trees and dispatch continuable errors through configured restarts",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Wire --config into the app-level settings resolver.
			if path, err := cmd.Flags().GetString("config"); err == nil && path != "" {
				app.SetConfigPathOverride(path)
			} else if err := app.EnsureConfigDir(); err != nil {
				return err
			}
			configureLogging(cmd)
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "Path to config.yaml (default: $CERROR_CONFIG or ~/.config/cerror/config.yaml)")
	root.PersistentFlags().Bool("trace", false, "Export dispatch spans to stderr")
	root.PersistentFlags().Bool("debug", false, "Log at debug level")
	root.Flags().BoolP("version", "v", false, "version for cerror")

	root.AddCommand(NewKindsCmd())
	root.AddCommand(NewChainCmd())
	root.AddCommand(NewDispatchCmd())
	root.AddCommand(NewDoctorCmd())
	root.AddCommand(NewSchemaCmd(root))
	return root
}
