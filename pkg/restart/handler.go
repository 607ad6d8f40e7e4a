package restart

import (
	"context"

	"github.com/google/uuid"
)

// Handler is offered a continuable error during dispatch. It returns
// handled=true with a substitute result to restart the computation, or
// handled=false to let the next handler in the chain try. A non-nil err
// aborts the dispatch and is returned to the raiser as is.
//
// fallback is the failure the raiser will see if no handler restarts.
type Handler[C, R any] interface {
	Restart(ctx context.Context, e *ContinuableError[C], fallback error) (result R, handled bool, err error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[C, R any] func(ctx context.Context, e *ContinuableError[C], fallback error) (R, bool, error)

// Restart calls f.
func (f HandlerFunc[C, R]) Restart(ctx context.Context, e *ContinuableError[C], fallback error) (R, bool, error) {
	return f(ctx, e, fallback)
}

// Decline returns a handler that never restarts.
func Decline[C, R any]() Handler[C, R] {
	return HandlerFunc[C, R](func(context.Context, *ContinuableError[C], error) (R, bool, error) {
		var zero R
		return zero, false, nil
	})
}

// UseValue returns a handler that always restarts with v.
func UseValue[C, R any](v R) Handler[C, R] {
	return HandlerFunc[C, R](func(context.Context, *ContinuableError[C], error) (R, bool, error) {
		return v, true, nil
	})
}

// Abort returns a handler that stops the dispatch with err.
func Abort[C, R any](err error) Handler[C, R] {
	return HandlerFunc[C, R](func(context.Context, *ContinuableError[C], error) (R, bool, error) {
		var zero R
		return zero, false, err
	})
}

// Registration identifies one registered handler so it can be removed later.
// Handler values themselves need not be comparable.
type Registration struct {
	id uuid.UUID
}

func newRegistration() Registration {
	return Registration{id: uuid.New()}
}

// ID returns the registration's identifier.
func (r Registration) ID() string { return r.id.String() }

// IsZero reports whether r was never issued by a Registry.
func (r Registration) IsZero() bool { return r.id == uuid.Nil }

// registered pairs a handler with the token issued for it.
type registered[C, R any] struct {
	reg     Registration
	handler Handler[C, R]
}
