package commands

import (
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/internal/output"
)

const (
	// argAnnotation names what a command's positional argument is.
	argAnnotation = "cerror/arg"
	argKind       = "kind"

	// requiredAnnotation marks flags the command rejects when empty.
	requiredAnnotation = "cerror/required"
)

// takesKind annotates cmd as taking one kind as its positional argument.
func takesKind(cmd *cobra.Command) {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[argAnnotation] = argKind
}

func markRequired(cmd *cobra.Command, name string) {
	_ = cmd.Flags().SetAnnotation(name, requiredAnnotation, []string{"true"})
}

// NewSchemaCmd creates the schema command. root is used by schema commands to collect command schemas.
func NewSchemaCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect command schemas",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newSchemaCommandsCmd(root))
	return cmd
}

func newSchemaCommandsCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "Show commands with the kinds and restart actions they accept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kinds []models.Kind
			var configErr string
			if env, err := loadEnvironment(); err != nil {
				// The catalog is still useful without a valid kind tree.
				slog.Warn("schema without kinds", "error", err.Error())
				configErr = err.Error()
			} else {
				kinds, err = kindNames(env)
				if err != nil {
					return cmdErr(err)
				}
			}
			return output.PrintSuccess(buildCatalog(root, kinds, configErr))
		},
	}
}

type schemaCatalog struct {
	Kinds          []models.Kind          `json:"kinds"`
	RestartActions []models.RestartAction `json:"restart_actions"`
	GlobalFlags    map[string]flagSchema  `json:"global_flags"`
	Commands       []commandSchema        `json:"commands"`
	ConfigError    string                 `json:"config_error,omitempty"`
}

type commandSchema struct {
	Command     string                `json:"command"`
	Description string                `json:"description,omitempty"`
	Args        []argSchema           `json:"args,omitempty"`
	Flags       map[string]flagSchema `json:"flags,omitempty"`
	Required    []string              `json:"required,omitempty"`
}

type argSchema struct {
	Name string        `json:"name"`
	Enum []models.Kind `json:"enum,omitempty"`
}

type flagSchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
}

// kindNames lists the configured kinds, root first, then by depth and name.
func kindNames(env *environment) ([]models.Kind, error) {
	nodes, err := app.KindNodes(env.tree)
	if err != nil {
		return nil, err
	}
	kinds := make([]models.Kind, 0, len(nodes))
	for _, n := range nodes {
		kinds = append(kinds, n.Kind)
	}
	return kinds, nil
}

func buildCatalog(root *cobra.Command, kinds []models.Kind, configErr string) schemaCatalog {
	catalog := schemaCatalog{
		Kinds:          kinds,
		RestartActions: models.RestartActions(),
		GlobalFlags:    map[string]flagSchema{},
		Commands:       make([]commandSchema, 0),
		ConfigError:    configErr,
	}
	root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			catalog.GlobalFlags[f.Name] = describeFlag(f)
		}
	})
	for _, cmd := range root.Commands() {
		collectCommandSchemas(cmd, kinds, &catalog.Commands)
	}
	return catalog
}

func collectCommandSchemas(cmd *cobra.Command, kinds []models.Kind, out *[]commandSchema) {
	if cmd.Hidden || cmd.Name() == "schema" || cmd.Name() == "help" {
		return
	}
	if cmd.Runnable() {
		*out = append(*out, buildCommandSchema(cmd, kinds))
	}
	for _, child := range cmd.Commands() {
		collectCommandSchemas(child, kinds, out)
	}
}

func buildCommandSchema(cmd *cobra.Command, kinds []models.Kind) commandSchema {
	schema := commandSchema{
		Command:     cmd.CommandPath(),
		Description: cmd.Short,
	}
	if cmd.Annotations[argAnnotation] == argKind {
		schema.Args = []argSchema{{Name: argKind, Enum: kinds}}
	}

	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		if schema.Flags == nil {
			schema.Flags = map[string]flagSchema{}
		}
		schema.Flags[f.Name] = describeFlag(f)
		if vals := f.Annotations[requiredAnnotation]; slices.Contains(vals, "true") {
			schema.Required = append(schema.Required, f.Name)
		}
	})
	return schema
}

func describeFlag(f *pflag.Flag) flagSchema {
	fs := flagSchema{Description: f.Usage}
	switch f.Value.Type() {
	case "bool":
		fs.Type = "boolean"
	case "stringToString":
		fs.Type = "object"
	default:
		fs.Type = "string"
	}
	switch f.DefValue {
	case "", "[]", "false":
	default:
		fs.Default = f.DefValue
	}
	return fs
}
