package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// Loader reads and writes the config file. The filesystem is abstracted so
// tests run against an in-memory fs.
type Loader struct {
	fs       afero.Fs
	validate *validator.Validate
}

// NewLoader creates a loader over the given filesystem.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs, validate: validator.New()}
}

// Load reads the config at path, falling back to defaults when the file does
// not exist. Unknown fields are ignored; missing fields keep their defaults.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := afero.ReadFile(l.fs, path)
	switch {
	case os.IsNotExist(err):
		return config, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := l.validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Save validates and writes the config, creating parent directories as
// needed.
func (l *Loader) Save(path string, config *Config) error {
	if err := l.validate.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := l.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return afero.WriteFile(l.fs, path, data, 0o644)
}
