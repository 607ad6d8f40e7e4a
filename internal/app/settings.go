package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/cerror/internal/models"
	"github.com/dotcommander/cerror/internal/tracing"
)

// DefaultRoot is the root kind used when config.yaml does not name one.
const DefaultRoot models.Kind = "error"

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	Root     models.Kind                 `yaml:"root"`
	Kinds    map[models.Kind]models.Kind `yaml:"kinds"`
	Restarts []models.RestartSpec        `yaml:"restarts"`
	Tracing  tracing.Config              `yaml:"tracing"`
	LogLevel string                      `yaml:"log_level"`
}

// RootKind returns the configured root, or DefaultRoot.
func (s Settings) RootKind() models.Kind {
	if s.Root == "" {
		return DefaultRoot
	}
	return s.Root
}

// settingsOnce, settings, settingsSource, settingsErr implement the sync.Once lazy-load singleton for config.
// configPathOverrideMu and configPathOverride implement a mutex-protected process-wide override for CLI --config.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce   sync.Once
	settings       Settings
	settingsSource string
	settingsErr    error

	configPathOverrideMu sync.RWMutex
	configPathOverride   string
)

// SetConfigPathOverride sets a process-wide config file override.
// Intended for CLI flag support (e.g. --config).
func SetConfigPathOverride(path string) {
	configPathOverrideMu.Lock()
	configPathOverride = path
	configPathOverrideMu.Unlock()
}

// ResetSettings forgets the loaded settings and any --config override so the
// next LoadSettings resolves configuration again.
func ResetSettings() {
	settingsOnce = sync.Once{}
	settings = Settings{}
	settingsSource = ""
	settingsErr = nil
	SetConfigPathOverride("")
}

func getConfigPathOverride() string {
	configPathOverrideMu.RLock()
	v := configPathOverride
	configPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) CLI override (--config); the file must exist
// 2) Environment variable: CERROR_CONFIG; the file must exist
// 3) ~/.config/cerror/config.yaml
// 4) /etc/cerror/config.yaml
// 5) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// With no file found, zero Settings are returned.
func LoadSettings() (Settings, error) {
	s, _, err := ResolveSettingsDetailed()
	return s, err
}

// ResolveSettingsDetailed returns the loaded settings along with the source
// they came from. This is for debugging/reporting; normal code should use
// LoadSettings.
func ResolveSettingsDetailed() (Settings, string, error) {
	settingsOnce.Do(func() {
		settings, settingsSource, settingsErr = resolveSettings()
	})
	return settings, settingsSource, settingsErr
}

func resolveSettings() (Settings, string, error) {
	if override := getConfigPathOverride(); override != "" {
		s, err := loadSettingsFile(override)
		if err != nil {
			return Settings{}, "", fmt.Errorf("failed to load config %s: %w", override, err)
		}
		return s, fmt.Sprintf("cli(--config=%s)", override), nil
	}

	if envPath := os.Getenv("CERROR_CONFIG"); envPath != "" {
		s, err := loadSettingsFile(envPath)
		if err != nil {
			return Settings{}, "", fmt.Errorf("failed to load config %s: %w", envPath, err)
		}
		return s, fmt.Sprintf("env(CERROR_CONFIG=%s)", envPath), nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return Settings{}, "", fmt.Errorf("failed to determine config directory: %w", err)
	}

	configPaths := []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "cerror", "config.yaml"),
		"config.yaml",
	}
	for _, p := range configPaths {
		s, err := loadSettingsFile(p)
		if err == nil {
			return s, fmt.Sprintf("config(%s)", p), nil
		}
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return Settings{}, "", fmt.Errorf("failed to load config %s: %w", p, err)
	}
	return Settings{}, "default", nil
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
