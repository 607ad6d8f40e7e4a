package models

import (
	"fmt"
	"slices"
	"strings"
)

// Kind names a node in the configured error kind tree.
type Kind string

// RestartAction selects what a configured restart does when offered an error.
type RestartAction string

// Restart action constants.
const (
	// ActionUseValue restarts with the configured value.
	ActionUseValue RestartAction = "use-value"
	// ActionDecline passes the error to the next handler.
	ActionDecline RestartAction = "decline"
	// ActionFail aborts the dispatch with the configured message.
	ActionFail RestartAction = "fail"
)

// RestartActions lists every action a configured restart may take.
func RestartActions() []RestartAction {
	return []RestartAction{ActionUseValue, ActionDecline, ActionFail}
}

// IsValid reports whether a is a known action.
func (a RestartAction) IsValid() bool {
	return slices.Contains(RestartActions(), a)
}

// RestartSpec is one declaratively configured restart handler.
type RestartSpec struct {
	Kind   Kind          `yaml:"kind" json:"kind"`
	Action RestartAction `yaml:"action" json:"action"`
	Value  string        `yaml:"value,omitempty" json:"value,omitempty"`
	// Match, when set, restricts the restart to errors whose context has
	// every listed key with the listed value.
	Match map[string]string `yaml:"match,omitempty" json:"match,omitempty"`
}

// Validate checks that the restart names a kind and a known action.
func (s RestartSpec) Validate() error {
	if strings.TrimSpace(string(s.Kind)) == "" {
		return fmt.Errorf("restart: kind is required")
	}
	if !s.Action.IsValid() {
		return fmt.Errorf("restart for %q: unknown action %q (use-value|decline|fail)", s.Kind, s.Action)
	}
	return nil
}

// Matches reports whether ctx satisfies every Match constraint.
func (s RestartSpec) Matches(ctx map[string]string) bool {
	for k, want := range s.Match {
		if got, ok := ctx[k]; !ok || got != want {
			return false
		}
	}
	return true
}

// KindNode describes one kind of the tree for display.
type KindNode struct {
	Kind   Kind `json:"kind"`
	Parent Kind `json:"parent,omitempty"`
	Depth  int  `json:"depth"`
}

// Dispatch outcomes reported by the CLI.
const (
	OutcomeHandled   = "handled"
	OutcomeUnhandled = "unhandled"
	OutcomeAborted   = "aborted"
)

// DispatchResult reports the outcome of one CLI dispatch.
type DispatchResult struct {
	Kind    Kind              `json:"kind"`
	Chain   []Kind            `json:"chain"`
	Offered int               `json:"handlers"`
	Outcome string            `json:"outcome"`
	Value   string            `json:"value,omitempty"`
	Error   string            `json:"error,omitempty"`
	Short   string            `json:"short_description"`
	Long    string            `json:"long_description,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}
