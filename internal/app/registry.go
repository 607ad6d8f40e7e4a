package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/pkg/restart"
)

// Registry is the restart registry the CLI builds from config.yaml. Error
// context is a flat string map and restarts produce string values.
type Registry = restart.Registry[models.Kind, map[string]string, string]

// ContinuableError is the error type raised through Registry.
type ContinuableError = restart.ContinuableError[map[string]string]

// UnhandledError is the fallback the CLI raises with every dispatch. The
// registry returns it unchanged when no restart handles the error.
type UnhandledError struct {
	Kind  models.Kind
	Short string
}

func (e *UnhandledError) Error() string {
	return "unhandled continuable error: " + e.Short
}
func (e *UnhandledError) ErrorCode() string { return "UNHANDLED" }
func (e *UnhandledError) Context() map[string]string {
	return map[string]string{"kind": string(e.Kind)}
}
func (e *UnhandledError) SuggestedAction() string {
	return fmt.Sprintf("add a restart for %q or one of its ancestors to config.yaml", e.Kind)
}

// RestartFailedError is returned by a restart configured with action "fail".
type RestartFailedError struct {
	Kind    models.Kind
	Message string
}

func (e *RestartFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("restart for %s failed", e.Kind)
	}
	return fmt.Sprintf("restart for %s failed: %s", e.Kind, e.Message)
}
func (e *RestartFailedError) ErrorCode() string { return "RESTART_FAILED" }
func (e *RestartFailedError) Context() map[string]string {
	return map[string]string{"kind": string(e.Kind), "message": e.Message}
}
func (e *RestartFailedError) SuggestedAction() string {
	return "fix the input, or change the restart action in config.yaml"
}

// BuildRegistry registers one handler per spec, in order.
func BuildRegistry(tree *restart.Tree[models.Kind], specs []models.RestartSpec, opts ...restart.Option) (*Registry, error) {
	reg, err := restart.NewRegistry[models.Kind, map[string]string, string](tree, opts...)
	if err != nil {
		return nil, err
	}
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("restarts[%d]: %w", i, err)
		}
		if _, err := reg.Register(spec.Kind, handlerFor(spec)); err != nil {
			return nil, fmt.Errorf("restarts[%d]: %w", i, err)
		}
	}
	return reg, nil
}

type offeredKey struct{}

// countOffer records that a configured handler was offered an error.
func countOffer(ctx context.Context) {
	if n, ok := ctx.Value(offeredKey{}).(*int); ok {
		*n++
	}
}

func handlerFor(spec models.RestartSpec) restart.Handler[map[string]string, string] {
	return restart.HandlerFunc[map[string]string, string](func(ctx context.Context, e *ContinuableError, _ error) (string, bool, error) {
		countOffer(ctx)
		if !spec.Matches(e.Context()) {
			return "", false, nil
		}
		switch spec.Action {
		case models.ActionUseValue:
			return spec.Value, true, nil
		case models.ActionFail:
			return "", false, &RestartFailedError{Kind: spec.Kind, Message: spec.Value}
		default:
			return "", false, nil
		}
	})
}

// Dispatch raises e as kind through reg. The returned error is nil when a
// restart handled e, the UnhandledError fallback when none did, or the error
// of a failing restart.
func Dispatch(ctx context.Context, reg *Registry, tree *restart.Tree[models.Kind], kind models.Kind, e *ContinuableError) (models.DispatchResult, error) {
	chain, err := tree.Path(kind)
	if err != nil {
		return models.DispatchResult{}, err
	}
	result := models.DispatchResult{
		Kind:    kind,
		Chain:   chain,
		Short:   e.ShortDescription(),
		Long:    e.LongDescription(),
		Context: e.Context(),
	}

	offered := 0
	fallback := &UnhandledError{Kind: kind, Short: e.ShortDescription()}
	value, err := reg.Dispatch(context.WithValue(ctx, offeredKey{}, &offered), e, kind, fallback)
	result.Offered = offered

	switch {
	case err == nil:
		result.Outcome = models.OutcomeHandled
		result.Value = value
	case err == error(fallback):
		result.Outcome = models.OutcomeUnhandled
		result.Error = err.Error()
	default:
		result.Outcome = models.OutcomeAborted
		result.Error = err.Error()
	}
	slog.Debug("dispatch finished", "kind", string(kind), "outcome", result.Outcome, "handlers", offered)
	return result, err
}
