package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/output"
)

func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, kind tree and restart plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				configOK   bool
				configErr  string
				kindsOK    bool
				kindsErr   string
				restartsOK bool
				restartErr string
				kindCount  int
			)

			s, source, err := app.ResolveSettingsDetailed()
			if err != nil {
				configErr = err.Error()
			} else {
				configOK = true
			}

			if configOK {
				tree, err := app.BuildTree(s)
				if err != nil {
					kindsErr = err.Error()
				} else {
					kindsOK = true
					kindCount = len(tree.Kinds())
					if _, err := app.BuildRegistry(tree, s.Restarts); err != nil {
						restartErr = err.Error()
					} else {
						restartsOK = true
					}
				}
			} else {
				kindsErr = "config not available"
				restartErr = "config not available"
			}

			if _, err := parseLogLevel(s.LogLevel); configOK && err != nil {
				configOK = false
				configErr = err.Error()
			}

			type resp struct {
				ConfigSource string `json:"config_source,omitempty"`
				ConfigOK     bool   `json:"config_ok"`
				ConfigErr    string `json:"config_error,omitempty"`
				Root         string `json:"root,omitempty"`
				Kinds        int    `json:"kinds"`
				KindsOK      bool   `json:"kinds_ok"`
				KindsErr     string `json:"kinds_error,omitempty"`
				Restarts     int    `json:"restarts"`
				RestartsOK   bool   `json:"restarts_ok"`
				RestartsErr  string `json:"restarts_error,omitempty"`
				Hint         string `json:"hint,omitempty"`
			}
			hint := ""
			if !configOK || !kindsOK || !restartsOK {
				hint = "Fix config.yaml (see `cerror --config <path> doctor`); every kind must lead to the root and every restart needs a known kind and action."
			}
			return output.PrintSuccess(resp{
				ConfigSource: source,
				ConfigOK:     configOK,
				ConfigErr:    configErr,
				Root:         string(s.RootKind()),
				Kinds:        kindCount,
				KindsOK:      kindsOK,
				KindsErr:     kindsErr,
				Restarts:     len(s.Restarts),
				RestartsOK:   restartsOK,
				RestartsErr:  restartErr,
				Hint:         hint,
			})
		},
	}

	return cmd
}
