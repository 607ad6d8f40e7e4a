package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/pkg/restart"
)

// environment is the configuration every command works from.
type environment struct {
	settings app.Settings
	source   string
	tree     *restart.Tree[models.Kind]
}

func loadEnvironment() (*environment, error) {
	s, source, err := app.ResolveSettingsDetailed()
	if err != nil {
		return nil, err
	}
	tree, err := app.BuildTree(s)
	if err != nil {
		return nil, err
	}
	return &environment{settings: s, source: source, tree: tree}, nil
}

// parseLogLevel maps log_level from config.yaml onto slog levels.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q (debug|info|warn|error)", s)
	}
}

// configureLogging installs the JSON stderr logger at the configured level.
// A config that fails to load leaves the default level in place; the command
// itself reports the load error.
func configureLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	} else if s, err := app.LoadSettings(); err == nil {
		if l, err := parseLogLevel(s.LogLevel); err == nil {
			level = l
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
