package restart

import (
	"errors"
	"iter"
	"sync"
	"sync/atomic"
)

// DefaultBlockCapacity is the starting capacity of blocks created by an Index.
const DefaultBlockCapacity = 4

var (
	// ErrEmptyBlock is returned by Pop on a block with no values.
	ErrEmptyBlock = errors.New("pop called on empty block")
	// ErrParentAlreadySet is returned when relinking a block to a different parent.
	ErrParentAlreadySet = errors.New("block parent already set")
)

// Block is a growable LIFO array of values, optionally chained to the block
// of the nearest ancestor kind.
//
// Slots [0, top) are free capacity and [top, len(values)) hold values, with the
// most recently pushed value at top. Push writes only below the current top
// or into a freshly grown array. Pop, Remove and Clear work in place unless a
// reader has snapshotted (values, top) since the last write, in which case
// they first copy the live slots into a new array. A snapshot therefore never
// sees a slot change underneath it, and a block nobody is iterating pays O(1)
// for Pop.
type Block[V any] struct {
	mu     sync.RWMutex
	values []V
	top    int
	parent *Block[V]

	// shared is set by snapshot under the read lock and cleared by the next
	// writer that copies the array.
	shared atomic.Bool
}

// NewBlock returns an empty block with the given starting capacity.
// A capacity below zero is treated as zero; the first push grows it.
func NewBlock[V any](capacity int) *Block[V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Block[V]{
		values: make([]V, capacity),
		top:    capacity,
	}
}

// Parent returns the block this one is chained to, or nil.
func (b *Block[V]) Parent() *Block[V] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.parent
}

// SetParent links b to parent. The link is set once; setting the same parent
// again is a no-op.
func (b *Block[V]) SetParent(parent *Block[V]) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.parent != nil && b.parent != parent {
		return ErrParentAlreadySet
	}
	b.parent = parent
	return nil
}

// IsEmpty reports whether the block holds no values of its own.
func (b *Block[V]) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.top == len(b.values)
}

// Len returns the number of values held by this block only.
func (b *Block[V]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values) - b.top
}

// ChainLen returns the number of values across b and all of its ancestors.
func (b *Block[V]) ChainLen() int {
	total := 0
	for cur := b; cur != nil; cur = cur.Parent() {
		total += cur.Len()
	}
	return total
}

// grow doubles the backing array and moves the values into its upper half.
// Callers hold b.mu.
func (b *Block[V]) grow() {
	oldLen := len(b.values)
	newLen := max(oldLen*2, 1)
	values := make([]V, newLen)
	top := newLen - oldLen + b.top
	copy(values[top:], b.values[b.top:])
	b.values = values
	b.top = top
	b.shared.Store(false)
}

// Push places v on top of the block.
func (b *Block[V]) Push(v V) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.top == 0 {
		b.grow()
	}
	b.top--
	b.values[b.top] = v
}

// unshare gives the writer an array no snapshot refers to. Callers hold b.mu.
func (b *Block[V]) unshare() {
	if !b.shared.Load() {
		return
	}
	values := make([]V, len(b.values))
	copy(values[b.top:], b.values[b.top:])
	b.values = values
	b.shared.Store(false)
}

// Pop removes and returns the most recently pushed value.
func (b *Block[V]) Pop() (V, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero V
	if b.top == len(b.values) {
		return zero, ErrEmptyBlock
	}
	b.unshare()
	result := b.values[b.top]
	b.values[b.top] = zero
	b.top++
	return result, nil
}

// Remove deletes the most recent value in this block for which match returns
// true. Ancestor blocks are not searched. It reports whether a value was removed.
func (b *Block[V]) Remove(match func(V) bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := b.top; i < len(b.values); i++ {
		if !match(b.values[i]) {
			continue
		}
		b.unshare()
		var zero V
		copy(b.values[b.top+1:i+1], b.values[b.top:i])
		b.values[b.top] = zero
		b.top++
		return true
	}
	return false
}

// Clear drops every value held by this block. The parent link is kept.
func (b *Block[V]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unshare()
	clear(b.values[b.top:])
	b.top = len(b.values)
}

// snapshot returns the live values of this block and its parent link.
// The returned slice must not be written to.
func (b *Block[V]) snapshot() ([]V, *Block[V]) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.shared.Store(true)
	return b.values[b.top:], b.parent
}

// Values returns a copy of this block's values, most recent first.
func (b *Block[V]) Values() []V {
	live, _ := b.snapshot()
	out := make([]V, len(live))
	copy(out, live)
	return out
}

// All yields this block's values, most recent first.
func (b *Block[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		live, _ := b.snapshot()
		for _, v := range live {
			if !yield(v) {
				return
			}
		}
	}
}

// Chain yields this block's values, most recent first, followed by the
// values of each ancestor block in turn. Empty blocks contribute nothing.
func (b *Block[V]) Chain() iter.Seq[V] {
	return func(yield func(V) bool) {
		for cur := b; cur != nil; {
			live, parent := cur.snapshot()
			for _, v := range live {
				if !yield(v) {
					return
				}
			}
			cur = parent
		}
	}
}

// Chaining selects whether a View follows parent links.
type Chaining int

const (
	// FollowParents includes the values of every ancestor block.
	FollowParents Chaining = iota
	// SingleLevel restricts the view to the block's own values.
	SingleLevel
)

// String returns the chaining mode name.
func (c Chaining) String() string {
	switch c {
	case FollowParents:
		return "follow_parents"
	case SingleLevel:
		return "single_level"
	default:
		return "unknown"
	}
}

// View is a read-only collection over a block. It reflects later pushes and
// pops on the underlying blocks.
type View[V any] struct {
	block    *Block[V]
	chaining Chaining
}

// View returns a collection view of b. Unknown chaining modes follow parents.
func (b *Block[V]) View(chaining Chaining) View[V] {
	return View[V]{block: b, chaining: chaining}
}

// Len returns the number of values visible through the view.
func (v View[V]) Len() int {
	if v.chaining == SingleLevel {
		return v.block.Len()
	}
	return v.block.ChainLen()
}

// All yields the values visible through the view.
func (v View[V]) All() iter.Seq[V] {
	if v.chaining == SingleLevel {
		return v.block.All()
	}
	return v.block.Chain()
}
