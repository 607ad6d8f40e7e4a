package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/internal/output"
)

func printedEnvelope(t *testing.T, err error) envelope {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, output.PrintWith(output.Config{Writer: &buf}, output.Error(err)))

	var env envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	return env
}

func TestDispatchError_MergesReportIntoContext(t *testing.T) {
	result := models.DispatchResult{
		Kind:    "token-error",
		Chain:   []models.Kind{"token-error", "parse-error", "error"},
		Offered: 2,
		Outcome: models.OutcomeAborted,
	}
	failed := &app.RestartFailedError{Kind: "parse-error", Message: "give up"}

	env := printedEnvelope(t, &dispatchError{result: result, err: failed})
	require.False(t, env.Success)
	require.Equal(t, "restart for parse-error failed: give up", env.Error)
	require.Equal(t, "RESTART_FAILED", env.ErrorCode)
	require.Equal(t, map[string]string{
		// The raised kind wins over the kind of the failing restart.
		"kind":     "token-error",
		"outcome":  "aborted",
		"chain":    "token-error>parse-error>error",
		"handlers": "2",
		"message":  "give up",
	}, env.ErrorContext)
	require.Equal(t, failed.SuggestedAction(), env.SuggestedAction)
}

func TestDispatchError_PlainHandlerError(t *testing.T) {
	result := models.DispatchResult{
		Kind:    "io-error",
		Chain:   []models.Kind{"io-error", "error"},
		Offered: 1,
		Outcome: models.OutcomeAborted,
	}
	err := &dispatchError{result: result, err: errors.New("handler exploded")}

	env := printedEnvelope(t, err)
	require.Equal(t, "DISPATCH_FAILED", env.ErrorCode)
	require.Equal(t, "io-error>error", env.ErrorContext["chain"])
	require.Empty(t, env.SuggestedAction)
	require.ErrorContains(t, errors.Unwrap(err), "handler exploded")
}
