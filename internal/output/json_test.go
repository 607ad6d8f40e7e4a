package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/cerror/internal/app"
	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/pkg/restart"
)

// Compile-time check: models.RecoverableError must satisfy the local recoverableError interface.
var _ recoverableError = (models.RecoverableError)(nil)

func printTo(t *testing.T, pretty bool, v any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, PrintWith(Config{Writer: &buf, Pretty: pretty}, v))
	return buf.String()
}

func TestPrintWith_HandledDispatch(t *testing.T) {
	out := printTo(t, false, Success(models.DispatchResult{
		Kind:    "token-error",
		Chain:   []models.Kind{"token-error", "parse-error", "error"},
		Offered: 1,
		Outcome: models.OutcomeHandled,
		Value:   "owl:Thing",
		Short:   "unknown token",
	}))

	require.JSONEq(t, `{
		"schema_version": "v1",
		"success": true,
		"data": {
			"kind": "token-error",
			"chain": ["token-error", "parse-error", "error"],
			"handlers": 1,
			"outcome": "handled",
			"value": "owl:Thing",
			"short_description": "unknown token"
		}
	}`, out)
}

func TestError_UnhandledFallback(t *testing.T) {
	resp := Error(&app.UnhandledError{Kind: "io-error", Short: "disk full"})

	require.False(t, resp.Success)
	require.Nil(t, resp.Data)
	require.Equal(t, "unhandled continuable error: disk full", resp.Error)
	require.Equal(t, "UNHANDLED", resp.ErrorCode)
	require.Equal(t, map[string]string{"kind": "io-error"}, resp.ErrorContext)
	require.Contains(t, resp.SuggestedAction, `"io-error"`)
}

func TestError_WrappedRestartFailure(t *testing.T) {
	failed := &app.RestartFailedError{Kind: "token-error", Message: "tokens must be declared"}
	resp := Error(fmt.Errorf("dispatch: %w", failed))

	require.Equal(t, "dispatch: restart for token-error failed: tokens must be declared", resp.Error)
	require.Equal(t, "RESTART_FAILED", resp.ErrorCode)
	require.Equal(t, "tokens must be declared", resp.ErrorContext["message"])
	require.Equal(t, "token-error", resp.ErrorContext["kind"])
}

func TestError_WrappedMalformedHierarchy(t *testing.T) {
	_, err := restart.NewTree("error", map[string]string{"token-error": "parse-error"})
	require.Error(t, err)

	resp := Error(fmt.Errorf("load kinds: %w", err))
	require.Equal(t, "MALFORMED_HIERARCHY", resp.ErrorCode)
	require.Equal(t, "parse-error", resp.ErrorContext["kind"])
	require.Equal(t, "no parent kind defined", resp.ErrorContext["reason"])
	require.Contains(t, resp.SuggestedAction, "parse-error")
}

func TestPrintWith_PlainErrorOmitsRecoveryFields(t *testing.T) {
	out := printTo(t, false, Error(errors.New("--short is required")))

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	require.Equal(t, map[string]any{
		"schema_version": "v1",
		"success":        false,
		"error":          "--short is required",
	}, fields)
}

func TestPrintWith_Pretty(t *testing.T) {
	out := printTo(t, true, Error(&app.UnhandledError{Kind: "io-error", Short: "disk full"}))

	require.Contains(t, out, "\n  \"error_code\": \"UNHANDLED\",\n")
	require.Contains(t, out, "\n  \"error_context\": {\n    \"kind\": \"io-error\"\n  },\n")
}

func TestDefaultConfig_PrettyFromEnv(t *testing.T) {
	for value, pretty := range map[string]bool{"": false, "0": false, "1": true, "true": true} {
		t.Run("CERROR_PRETTY_JSON="+value, func(t *testing.T) {
			t.Setenv("CERROR_PRETTY_JSON", value)
			cfg := DefaultConfig()
			require.Equal(t, os.Stdout, cfg.Writer)
			require.Equal(t, pretty, cfg.Pretty)
		})
	}
}
