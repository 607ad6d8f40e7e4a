package app

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/pkg/restart"
)

// BuildTree validates the configured kinds and returns them as a tree.
func BuildTree(s Settings) (*restart.Tree[models.Kind], error) {
	tree, err := restart.NewTree(s.RootKind(), s.Kinds)
	if err != nil {
		return nil, fmt.Errorf("load kinds: %w", err)
	}
	return tree, nil
}

// KindNodes lists every kind of the tree, shallowest first, then by name.
func KindNodes(tree *restart.Tree[models.Kind]) ([]models.KindNode, error) {
	kinds := tree.Kinds()
	nodes := make([]models.KindNode, 0, len(kinds))
	for _, k := range kinds {
		path, err := tree.Path(k)
		if err != nil {
			return nil, err
		}
		node := models.KindNode{Kind: k, Depth: len(path) - 1}
		if p, ok := tree.Parent(k); ok {
			node.Parent = p
		}
		nodes = append(nodes, node)
	}
	slices.SortFunc(nodes, func(a, b models.KindNode) int {
		if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return nodes, nil
}
