package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/cerror/internal/models"
)

func resetSettingsStateForTest() {
	ResetSettings()
}

func isolateHome(t *testing.T) string {
	t.Helper()
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CERROR_CONFIG", "")

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home
}

func writeUserConfig(t *testing.T, home, content string) string {
	t.Helper()
	path := filepath.Join(home, ".config", "cerror", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettings_PrefersUserConfigOverLocal(t *testing.T) {
	home := isolateHome(t)

	userPath := writeUserConfig(t, home, "root: from-user\n")
	require.NoError(t, os.WriteFile("config.yaml", []byte("root: from-local\n"), 0o600))

	s, source, err := ResolveSettingsDetailed()
	require.NoError(t, err)
	require.Equal(t, models.Kind("from-user"), s.Root)
	require.Equal(t, "config("+userPath+")", source)
}

func TestLoadSettings_FallsBackToLocalConfig(t *testing.T) {
	isolateHome(t)

	require.NoError(t, os.WriteFile("config.yaml", []byte("root: from-local\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, models.Kind("from-local"), s.Root)
}

func TestLoadSettings_CLIOverrideWins(t *testing.T) {
	home := isolateHome(t)
	writeUserConfig(t, home, "root: from-user\n")

	envPath := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(envPath, []byte("root: from-env\n"), 0o600))
	t.Setenv("CERROR_CONFIG", envPath)

	cliPath := filepath.Join(t.TempDir(), "cli.yaml")
	require.NoError(t, os.WriteFile(cliPath, []byte("root: from-cli\n"), 0o600))
	SetConfigPathOverride(cliPath)

	s, source, err := ResolveSettingsDetailed()
	require.NoError(t, err)
	require.Equal(t, models.Kind("from-cli"), s.Root)
	require.True(t, strings.HasPrefix(source, "cli("))
}

func TestLoadSettings_EnvBeatsUserConfig(t *testing.T) {
	home := isolateHome(t)
	writeUserConfig(t, home, "root: from-user\n")

	envPath := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(envPath, []byte("root: from-env\n"), 0o600))
	t.Setenv("CERROR_CONFIG", envPath)

	s, source, err := ResolveSettingsDetailed()
	require.NoError(t, err)
	require.Equal(t, models.Kind("from-env"), s.Root)
	require.True(t, strings.HasPrefix(source, "env("))
}

func TestLoadSettings_MissingOverrideIsAnError(t *testing.T) {
	isolateHome(t)
	SetConfigPathOverride(filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadSettings()
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSettings_NoFileUsesDefaults(t *testing.T) {
	isolateHome(t)

	s, source, err := ResolveSettingsDetailed()
	require.NoError(t, err)
	require.Equal(t, "default", source)
	require.Equal(t, DefaultRoot, s.RootKind())
	require.Empty(t, s.Kinds)
}

func TestLoadSettings_InvalidYAMLReturnsError(t *testing.T) {
	home := isolateHome(t)
	writeUserConfig(t, home, "root: [")

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestLoadSettingsFile_ReadsKindsAndRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"root: error",
		"kinds:",
		"  parse-error: error",
		"  token-error: parse-error",
		"restarts:",
		"  - kind: token-error",
		"    action: use-value",
		"    value: owl:Thing",
		"    match:",
		"      token: owl:Thng",
		"tracing:",
		"  enabled: true",
		"  service_name: cerror-test",
		"log_level: debug",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, models.Kind("error"), s.Root)
	require.Equal(t, map[models.Kind]models.Kind{"parse-error": "error", "token-error": "parse-error"}, s.Kinds)
	require.Equal(t, []models.RestartSpec{{
		Kind:   "token-error",
		Action: models.ActionUseValue,
		Value:  "owl:Thing",
		Match:  map[string]string{"token": "owl:Thng"},
	}}, s.Restarts)
	require.True(t, s.Tracing.Enabled)
	require.Equal(t, "cerror-test", s.Tracing.ServiceName)
	require.Equal(t, "debug", s.LogLevel)
}
