package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragchat/internal/adapters/driven/config"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFile is the settings file name inside the config directory.
const configFile = "config.toml"

// ConfigStore keeps settings in ~/.ragchat/config.toml.
//
// Keys are dotted ("llm.model") in memory and grouped into one TOML table
// per prefix on disk:
//
//	[llm]
//	model = "gpt-4-turbo-preview"
//	temperature = 0.2
//
// Every write replaces the file atomically.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	values   config.Values
}

// NewConfigStore opens the config file in configDir, creating the directory
// if needed. If configDir is empty, ~/.ragchat is used. A missing file is
// an empty configuration.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: home directory: %w", err)
		}
		configDir = filepath.Join(home, ".ragchat")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("config: create %s: %w", configDir, err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, configFile),
		values:   config.Values{},
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a raw value by dotted key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString retrieves a string value.
func (s *ConfigStore) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.String(key)
}

// GetInt retrieves an integer value.
func (s *ConfigStore) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Int(key)
}

// GetFloat retrieves a number.
func (s *ConfigStore) GetFloat(key string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Float(key)
}

// GetBool retrieves a boolean value.
func (s *ConfigStore) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Bool(key)
}

// Set stores one value and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	return s.Update(map[string]any{key: value})
}

// Update stores values and rewrites the file once. On a write failure the
// in-memory state is left unchanged.
func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.values.Clone()
	for k, v := range values {
		next[k] = v
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// write persists values (caller must hold lock).
func (s *ConfigStore) write(values config.Values) error {
	data, err := toml.Marshal(values.Nest())
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := renameio.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", s.filePath, err)
	}
	return nil
}

// Load re-reads the file. A missing file yields an empty configuration.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.values = config.Values{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", s.filePath, err)
	}

	var decoded map[string]any
	if err := toml.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("config: parse %s: %w", s.filePath, err)
	}
	s.values = config.Flatten(decoded)
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
