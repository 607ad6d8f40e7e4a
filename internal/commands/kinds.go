package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/internal/output"
)

// NewKindsCmd prints the configured kind tree.
func NewKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the configured error kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return cmdErr(err)
			}
			nodes, err := app.KindNodes(env.tree)
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				Root  models.Kind       `json:"root"`
				Count int               `json:"count"`
				Kinds []models.KindNode `json:"kinds"`
			}
			return output.PrintSuccess(resp{
				Root:  env.tree.Root(),
				Count: len(nodes),
				Kinds: nodes,
			})
		},
	}
}

// NewChainCmd prints the kinds a dispatch for one kind walks through.
func NewChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <kind>",
		Short: "Show the chain of kinds from a kind up to the root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return cmdErr(err)
			}
			kind := models.Kind(args[0])
			chain, err := env.tree.Path(kind)
			if err != nil {
				return cmdErr(err)
			}

			restarts := make(map[models.Kind]int, len(chain))
			for _, spec := range env.settings.Restarts {
				restarts[spec.Kind]++
			}
			type link struct {
				Kind     models.Kind `json:"kind"`
				Restarts int         `json:"restarts"`
			}
			links := make([]link, 0, len(chain))
			for _, k := range chain {
				links = append(links, link{Kind: k, Restarts: restarts[k]})
			}

			type resp struct {
				Kind  models.Kind `json:"kind"`
				Chain []link      `json:"chain"`
			}
			return output.PrintSuccess(resp{Kind: kind, Chain: links})
		},
	}
	takesKind(cmd)
	return cmd
}
