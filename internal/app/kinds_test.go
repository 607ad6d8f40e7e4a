package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/pkg/restart"
)

func sampleSettings() Settings {
	return Settings{
		Root: "error",
		Kinds: map[models.Kind]models.Kind{
			"parse-error":      "error",
			"io-error":         "error",
			"token-error":      "parse-error",
			"unknown-property": "token-error",
		},
	}
}

func TestBuildTree(t *testing.T) {
	tree, err := BuildTree(sampleSettings())
	require.NoError(t, err)

	path, err := tree.Path("unknown-property")
	require.NoError(t, err)
	require.Equal(t, []models.Kind{"unknown-property", "token-error", "parse-error", "error"}, path)
}

func TestBuildTree_MalformedKinds(t *testing.T) {
	s := sampleSettings()
	s.Kinds["orphan"] = "nowhere"

	_, err := BuildTree(s)
	require.ErrorIs(t, err, restart.ErrMalformedHierarchy)
	require.ErrorContains(t, err, "load kinds")
}

func TestBuildTree_DefaultRoot(t *testing.T) {
	tree, err := BuildTree(Settings{Kinds: map[models.Kind]models.Kind{"parse-error": "error"}})
	require.NoError(t, err)
	require.Equal(t, DefaultRoot, tree.Root())
}

func TestKindNodes_SortedByDepthThenName(t *testing.T) {
	tree, err := BuildTree(sampleSettings())
	require.NoError(t, err)

	nodes, err := KindNodes(tree)
	require.NoError(t, err)
	require.Equal(t, []models.KindNode{
		{Kind: "error", Depth: 0},
		{Kind: "io-error", Parent: "error", Depth: 1},
		{Kind: "parse-error", Parent: "error", Depth: 1},
		{Kind: "token-error", Parent: "parse-error", Depth: 2},
		{Kind: "unknown-property", Parent: "token-error", Depth: 3},
	}, nodes)
}
