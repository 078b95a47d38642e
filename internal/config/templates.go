package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# bop configuration

[pricing]
# Largest number of steps accepted. 0 uses the built-in default (20).
# The tree engine allocates 2^(T+1)-1 nodes and is capped at 24 steps.
max_steps = 20
# Validation policy: "strict" rejects p* outside [0,1], i.e. unless d <= 1+r <= u;
# "permissive" prices them anyway and logs a warning.
policy = "strict"
# Lattice engine: "tree" (full binary tree) or "recombining" (linear memory)
engine = "tree"
# Digits after the decimal point when printing prices
precision = 6

[logging]
# Log level: debug, info, warn, error, off
level = "warn"
# Also write logs to a rotating file
file = false
# file_path = "~/.config/bop/logs/bop.log"
max_size = 10
max_backups = 3
max_age = 28

[journal]
# Record every priced quote in a SQLite journal (see 'bop history')
enabled = false
# path = "~/.config/bop/journal.db"

[batch]
# Concurrent workers for 'bop batch'. 0 uses one per CPU.
workers = 0
`

// WriteTemplate creates a commented configuration file in configDir.
// An existing file is left untouched and reported as an error.
func WriteTemplate(configDir string) (string, error) {
	path := ConfigPath(configDir)

	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return path, fmt.Errorf("failed to write config template: %w", err)
	}

	return path, nil
}
