package restart

import (
	"errors"
	"iter"
	"sync"
)

// ErrRootEviction is returned when asked to evict the root kind.
var ErrRootEviction = errors.New("root kind cannot be evicted")

// Index maps kinds to blocks and materializes ancestor blocks on demand, so
// the block of every resolved kind is chained to the block of its parent.
//
// Lookups of resolved kinds are lock-free; first-time resolution is
// serialized by a single mutex so overlapping chains converge on the same
// blocks.
type Index[K comparable, V any] struct {
	hierarchy Hierarchy[K]
	capacity  int

	blocks sync.Map // K -> *Block[V]
	mu     sync.Mutex
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	capacity int
}

// WithCapacity sets the starting capacity of blocks created by the index.
func WithCapacity(n int) IndexOption {
	return func(o *indexOptions) {
		o.capacity = n
	}
}

// NewIndex returns an empty index over h. If h implements Validator it is
// validated first.
func NewIndex[K comparable, V any](h Hierarchy[K], opts ...IndexOption) (*Index[K, V], error) {
	o := &indexOptions{capacity: DefaultBlockCapacity}
	for _, opt := range opts {
		opt(o)
	}
	if v, ok := h.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &Index[K, V]{hierarchy: h, capacity: o.capacity}, nil
}

// Hierarchy returns the kind tree the index resolves against.
func (ix *Index[K, V]) Hierarchy() Hierarchy[K] { return ix.hierarchy }

func (ix *Index[K, V]) load(kind K) (*Block[V], bool) {
	e, ok := ix.blocks.Load(kind)
	if !ok {
		return nil, false
	}
	return e.(*Block[V]), true
}

// Block returns the block holding values registered directly against kind,
// materializing it and its ancestors if needed.
func (ix *Index[K, V]) Block(kind K) (*Block[V], error) {
	if b, ok := ix.load(kind); ok {
		return b, nil
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.resolveLocked(kind, nil)
}

// resolveLocked materializes kind and any missing ancestors. seen guards
// against parent cycles in hierarchies that were never validated.
func (ix *Index[K, V]) resolveLocked(kind K, seen map[K]struct{}) (*Block[V], error) {
	if b, ok := ix.load(kind); ok {
		return b, nil
	}
	root := ix.hierarchy.Root()
	block := NewBlock[V](ix.capacity)
	if kind != root {
		parent, ok := ix.hierarchy.Parent(kind)
		if !ok {
			return nil, malformed(kind, "no parent kind defined")
		}
		if seen == nil {
			seen = make(map[K]struct{})
		}
		seen[kind] = struct{}{}
		if _, loop := seen[parent]; loop {
			return nil, malformed(kind, "parent chain forms a cycle")
		}
		pb, err := ix.resolveLocked(parent, seen)
		if err != nil {
			return nil, err
		}
		block.parent = pb
	}
	ix.blocks.Store(kind, block)
	return block, nil
}

// Put pushes v onto kind's own block.
func (ix *Index[K, V]) Put(kind K, v V) error {
	b, err := ix.Block(kind)
	if err != nil {
		return err
	}
	b.Push(v)
	return nil
}

// Get returns the chained view of kind: its own values, most recent first,
// followed by those of each ancestor up to the root. The view is never nil;
// a kind with nothing registered yields an empty chain.
func (ix *Index[K, V]) Get(kind K) (Chain[K, V], error) {
	b, err := ix.Block(kind)
	if err != nil {
		return Chain[K, V]{}, err
	}
	return Chain[K, V]{kind: kind, block: b}, nil
}

// Contains reports whether kind has been materialized.
func (ix *Index[K, V]) Contains(kind K) bool {
	_, ok := ix.blocks.Load(kind)
	return ok
}

// Kinds returns the materialized kinds in no particular order.
func (ix *Index[K, V]) Kinds() []K {
	var out []K
	ix.blocks.Range(func(key, _ any) bool {
		out = append(out, key.(K))
		return true
	})
	return out
}

// Len returns the number of values held across every materialized block.
func (ix *Index[K, V]) Len() int {
	total := 0
	ix.blocks.Range(func(_, e any) bool {
		total += e.(*Block[V]).Len()
		return true
	})
	return total
}

// EvictKind forgets kind and every materialized descendant of it, along with
// the values they hold. It is the explicit unload hook for kinds that will
// never be raised again. Evicting a kind that was never materialized is a no-op.
func (ix *Index[K, V]) EvictKind(kind K) error {
	if kind == ix.hierarchy.Root() {
		return ErrRootEviction
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	target, ok := ix.load(kind)
	if !ok {
		return nil
	}
	var doomed []K
	ix.blocks.Range(func(key, e any) bool {
		for cur := e.(*Block[V]); cur != nil; cur = cur.Parent() {
			if cur == target {
				doomed = append(doomed, key.(K))
				break
			}
		}
		return true
	})
	for _, k := range doomed {
		ix.blocks.Delete(k)
	}
	return nil
}

// Chain is the chained view of one kind's block.
type Chain[K comparable, V any] struct {
	kind  K
	block *Block[V]
}

// Kind returns the kind the chain was resolved for.
func (c Chain[K, V]) Kind() K { return c.kind }

// Len returns the number of values across the chain.
func (c Chain[K, V]) Len() int {
	if c.block == nil {
		return 0
	}
	return c.block.ChainLen()
}

// All yields the chain's values in dispatch order.
func (c Chain[K, V]) All() iter.Seq[V] {
	if c.block == nil {
		return func(func(V) bool) {}
	}
	return c.block.Chain()
}

// Values returns a snapshot of the chain's values in dispatch order.
func (c Chain[K, V]) Values() []V {
	out := make([]V, 0, c.Len())
	for v := range c.All() {
		out = append(out, v)
	}
	return out
}
