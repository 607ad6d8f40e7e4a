package restart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ErrNilHandler is returned when registering a nil handler.
var ErrNilHandler = errors.New("handler is nil")

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	capacity int
}

// WithLogger sets the logger used for registration and dispatch events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer sets the tracer used to record a span per dispatch.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithBlockCapacity sets the starting handler capacity per kind.
func WithBlockCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// Registry resolves continuable errors against handlers registered per kind.
// Handlers for the most specific kind are tried first, and within a kind the
// most recently registered handler is tried first.
type Registry[K comparable, C, R any] struct {
	index  *Index[K, registered[C, R]]
	logger *slog.Logger
	tracer trace.Tracer
}

// NewRegistry returns an empty registry over h. A hierarchy that implements
// Validator and fails validation aborts construction.
func NewRegistry[K comparable, C, R any](h Hierarchy[K], opts ...Option) (*Registry[K, C, R], error) {
	o := &options{
		logger:   slog.New(slog.DiscardHandler),
		tracer:   noop.NewTracerProvider().Tracer("restart"),
		capacity: DefaultBlockCapacity,
	}
	for _, opt := range opts {
		opt(o)
	}
	index, err := NewIndex[K, registered[C, R]](h, WithCapacity(o.capacity))
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	return &Registry[K, C, R]{
		index:  index,
		logger: o.logger,
		tracer: o.tracer,
	}, nil
}

// Register adds h in front of every handler already registered for kind.
func (r *Registry[K, C, R]) Register(kind K, h Handler[C, R]) (Registration, error) {
	if h == nil {
		return Registration{}, ErrNilHandler
	}
	reg := newRegistration()
	if err := r.index.Put(kind, registered[C, R]{reg: reg, handler: h}); err != nil {
		return Registration{}, err
	}
	r.logger.Debug("restart handler registered", "kind", fmt.Sprint(kind), "registration", reg.ID())
	return reg, nil
}

// Unregister removes the handler issued reg from kind's own handlers.
// Handlers registered for ancestor kinds are not touched; an unknown
// registration is ignored.
func (r *Registry[K, C, R]) Unregister(kind K, reg Registration) error {
	if !r.index.Contains(kind) {
		return nil
	}
	b, err := r.index.Block(kind)
	if err != nil {
		return err
	}
	removed := b.Remove(func(e registered[C, R]) bool { return e.reg == reg })
	r.logger.Debug("restart handler unregistered", "kind", fmt.Sprint(kind), "registration", reg.ID(), "removed", removed)
	return nil
}

// UnregisterAll removes every handler registered directly for kind.
func (r *Registry[K, C, R]) UnregisterAll(kind K) error {
	if !r.index.Contains(kind) {
		return nil
	}
	b, err := r.index.Block(kind)
	if err != nil {
		return err
	}
	b.Clear()
	r.logger.Debug("restart handlers cleared", "kind", fmt.Sprint(kind))
	return nil
}

// UnregisterKind forgets kind and its materialized descendants entirely.
func (r *Registry[K, C, R]) UnregisterKind(kind K) error {
	if err := r.index.EvictKind(kind); err != nil {
		return err
	}
	r.logger.Debug("restart kind evicted", "kind", fmt.Sprint(kind))
	return nil
}

// Handlers returns the registrations that a dispatch for kind would offer
// the error to, in order.
func (r *Registry[K, C, R]) Handlers(kind K) ([]Registration, error) {
	chain, err := r.index.Get(kind)
	if err != nil {
		return nil, err
	}
	out := make([]Registration, 0, chain.Len())
	for e := range chain.All() {
		out = append(out, e.reg)
	}
	return out, nil
}

// Dispatch offers e to the handlers for kind and its ancestors, in order,
// until one restarts. It makes a single pass over the handlers registered
// when it starts; handlers registered or removed by a handler take effect
// from the next dispatch. If every handler declines, fallback is returned
// unchanged. An error returned by a handler stops the pass and is returned
// as is. Neither e nor fallback may be nil.
func (r *Registry[K, C, R]) Dispatch(ctx context.Context, e *ContinuableError[C], kind K, fallback error) (R, error) {
	var zero R
	if e == nil {
		panic("restart: Dispatch called with nil error")
	}
	if fallback == nil {
		panic("restart: Dispatch called with nil fallback")
	}
	kindName := fmt.Sprint(kind)

	ctx, span := r.tracer.Start(ctx, "restart.dispatch", trace.WithAttributes(
		attribute.String("restart.kind", kindName),
		attribute.String("restart.error", e.ShortDescription()),
	))
	defer span.End()

	chain, err := r.index.Get(kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}

	offered := 0
	for _, entry := range chain.Values() {
		offered++
		result, handled, herr := entry.handler.Restart(ctx, e, fallback)
		if herr != nil {
			span.RecordError(herr)
			span.SetStatus(codes.Error, herr.Error())
			span.SetAttributes(attribute.String("restart.outcome", "aborted"), attribute.Int("restart.offered", offered))
			r.logger.Debug("restart dispatch aborted by handler", "kind", kindName, "registration", entry.reg.ID(), "offered", offered, "error", herr.Error())
			return zero, herr
		}
		if handled {
			span.SetAttributes(attribute.String("restart.outcome", "handled"), attribute.Int("restart.offered", offered))
			r.logger.Debug("restart dispatch handled", "kind", kindName, "registration", entry.reg.ID(), "offered", offered)
			return result, nil
		}
	}

	span.SetAttributes(attribute.String("restart.outcome", "unhandled"), attribute.Int("restart.offered", offered))
	r.logger.Debug("restart dispatch unhandled", "kind", kindName, "offered", offered)
	return zero, fallback
}
