package restart

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMalformedHierarchy is the sentinel matched by every MalformedHierarchyError.
var ErrMalformedHierarchy = errors.New("malformed kind hierarchy")

// Hierarchy describes a rooted single-inheritance tree of kinds.
type Hierarchy[K comparable] interface {
	// Root returns the most general kind.
	Root() K
	// Parent returns the direct parent of kind. ok is false for the root and
	// for kinds the hierarchy does not define.
	Parent(kind K) (parent K, ok bool)
}

// Validator is implemented by hierarchies that can check themselves in full.
// NewRegistry and NewIndex run it before accepting the hierarchy.
type Validator interface {
	Validate() error
}

// MalformedHierarchyError reports a kind whose path to the root is broken.
type MalformedHierarchyError struct {
	Kind   string
	Reason string
}

func (e *MalformedHierarchyError) Error() string {
	return fmt.Sprintf("malformed kind hierarchy at %q: %s", e.Kind, e.Reason)
}
func (e *MalformedHierarchyError) ErrorCode() string { return "MALFORMED_HIERARCHY" }
func (e *MalformedHierarchyError) Context() map[string]string {
	return map[string]string{
		"kind":   e.Kind,
		"reason": e.Reason,
	}
}
func (e *MalformedHierarchyError) SuggestedAction() string {
	return fmt.Sprintf("declare a parent for %q that leads to the root kind", e.Kind)
}
func (e *MalformedHierarchyError) Is(target error) bool { return target == ErrMalformedHierarchy }

func malformed[K comparable](kind K, reason string) error {
	return &MalformedHierarchyError{Kind: fmt.Sprint(kind), Reason: reason}
}

// Tree is a fixed, statically enumerated kind hierarchy.
type Tree[K comparable] struct {
	root    K
	parents map[K]K
}

// NewTree builds a tree from a child-to-parent map and validates it.
// The root must not appear as a child.
func NewTree[K comparable](root K, parents map[K]K) (*Tree[K], error) {
	t := &Tree[K]{
		root:    root,
		parents: make(map[K]K, len(parents)),
	}
	for child, parent := range parents {
		t.parents[child] = parent
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustTree is NewTree for hierarchies declared in code; it panics on error.
func MustTree[K comparable](root K, parents map[K]K) *Tree[K] {
	t, err := NewTree(root, parents)
	if err != nil {
		panic(err)
	}
	return t
}

// Root implements Hierarchy.
func (t *Tree[K]) Root() K { return t.root }

// Parent implements Hierarchy.
func (t *Tree[K]) Parent(kind K) (K, bool) {
	p, ok := t.parents[kind]
	return p, ok
}

// Contains reports whether kind is the root or a declared child.
func (t *Tree[K]) Contains(kind K) bool {
	if kind == t.root {
		return true
	}
	_, ok := t.parents[kind]
	return ok
}

// Kinds returns every kind in the tree, root included, in no particular order.
func (t *Tree[K]) Kinds() []K {
	out := make([]K, 0, len(t.parents)+1)
	out = append(out, t.root)
	for k := range t.parents {
		out = append(out, k)
	}
	return out
}

// Path returns kind followed by each of its ancestors up to the root.
func (t *Tree[K]) Path(kind K) ([]K, error) {
	return pathToRoot[K](t, kind)
}

// Validate checks that every declared kind reaches the root without a cycle.
func (t *Tree[K]) Validate() error {
	if _, ok := t.parents[t.root]; ok {
		return malformed(t.root, "root kind declares a parent")
	}
	for kind := range t.parents {
		if _, err := pathToRoot[K](t, kind); err != nil {
			return err
		}
	}
	return nil
}

// pathToRoot walks parent links from kind to the root of h.
func pathToRoot[K comparable](h Hierarchy[K], kind K) ([]K, error) {
	root := h.Root()
	path := []K{kind}
	for cur := kind; cur != root; {
		parent, ok := h.Parent(cur)
		if !ok {
			return nil, malformed(cur, "no parent kind defined")
		}
		if slices.Contains(path, parent) {
			return nil, malformed(cur, fmt.Sprintf("parent %v forms a cycle", parent))
		}
		path = append(path, parent)
		cur = parent
	}
	return path, nil
}
