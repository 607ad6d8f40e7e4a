package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/internal/output"
	"github.com/dotcommander/cerror/internal/tracing"
	"github.com/dotcommander/cerror/pkg/restart"
)

// NewDispatchCmd raises one continuable error through the configured restarts.
func NewDispatchCmd() *cobra.Command {
	var (
		short  string
		long   string
		errCtx map[string]string
	)

	cmd := &cobra.Command{
		Use:   "dispatch <kind>",
		Short: "Raise a continuable error and report which restart handled it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(short) == "" {
				return cmdErr(errors.New("--short is required"))
			}
			trace, _ := cmd.Flags().GetBool("trace")
			return runDispatch(cmd.Context(), models.Kind(args[0]), short, long, errCtx, trace)
		},
	}

	cmd.Flags().StringVar(&short, "short", "", "Short description of the error")
	cmd.Flags().StringVar(&long, "long", "", "Long description of the error")
	cmd.Flags().StringToStringVar(&errCtx, "context", nil, "Error context as key=value pairs")
	markRequired(cmd, "short")
	takesKind(cmd)
	return cmd
}

func runDispatch(ctx context.Context, kind models.Kind, short, long string, errCtx map[string]string, trace bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := loadEnvironment()
	if err != nil {
		return cmdErr(err)
	}

	cfg := env.settings.Tracing
	cfg.Enabled = cfg.Enabled || trace
	provider, err := tracing.NewProvider(cfg, os.Stderr)
	if err != nil {
		return cmdErr(fmt.Errorf("init tracing: %w", err))
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err.Error())
		}
	}()

	reg, err := app.BuildRegistry(env.tree, env.settings.Restarts,
		restart.WithLogger(slog.Default()),
		restart.WithTracer(provider.Tracer()),
	)
	if err != nil {
		return cmdErr(err)
	}

	if errCtx == nil {
		errCtx = map[string]string{}
	}
	e := restart.NewContinuableError(short, long, errCtx)
	result, err := app.Dispatch(ctx, reg, env.tree, kind, e)
	if err != nil && result.Outcome == "" {
		// The kind never resolved; there is no dispatch to report.
		return cmdErr(err)
	}
	if err != nil {
		return cmdErr(&dispatchError{result: result, err: err})
	}
	return output.PrintSuccess(result)
}

// dispatchError keeps the dispatch report attached to an unhandled or
// aborted dispatch so the printed error carries the chain that was walked.
type dispatchError struct {
	result models.DispatchResult
	err    error
}

func (e *dispatchError) Error() string { return e.err.Error() }
func (e *dispatchError) Unwrap() error { return e.err }

func (e *dispatchError) ErrorCode() string {
	var re models.RecoverableError
	if errors.As(e.err, &re) {
		return re.ErrorCode()
	}
	return "DISPATCH_FAILED"
}

func (e *dispatchError) Context() map[string]string {
	chain := make([]string, 0, len(e.result.Chain))
	for _, k := range e.result.Chain {
		chain = append(chain, string(k))
	}
	out := map[string]string{
		"kind":     string(e.result.Kind),
		"outcome":  e.result.Outcome,
		"chain":    strings.Join(chain, ">"),
		"handlers": fmt.Sprint(e.result.Offered),
	}
	var re models.RecoverableError
	if errors.As(e.err, &re) {
		for k, v := range re.Context() {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

func (e *dispatchError) SuggestedAction() string {
	var re models.RecoverableError
	if errors.As(e.err, &re) {
		return re.SuggestedAction()
	}
	return ""
}
