package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/cerror/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cerror"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# cerror configuration
# Run: cerror --help

# Most general error kind; every other kind must lead here.
root: error

# Kind tree as child: parent.
kinds:
  parse-error: error
  token-error: parse-error
  unknown-property: token-error

# Restarts are registered top to bottom. Within one kind the last entry
# is offered the error first; more specific kinds are always tried first.
restarts:
  - kind: parse-error
    action: decline
  - kind: unknown-property
    action: use-value
    value: owl:ObjectProperty

tracing:
  enabled: false
`
