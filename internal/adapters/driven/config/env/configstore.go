// Package env overlays environment variables on another ConfigStore.
//
// Overridden keys read from the environment when the variable is set;
// writes always go to the underlying store, so an override never ends up
// in the configuration file.
package env

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/heisync/internal/adapters/driven/config/convert"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore reads overridden keys from the environment and everything
// else from the wrapped store.
type ConfigStore struct {
	driven.ConfigStore
	vars map[string]string
}

// NewConfigStore wraps base. vars maps config keys to environment variable names.
func NewConfigStore(base driven.ConfigStore, vars map[string]string) *ConfigStore {
	return &ConfigStore{ConfigStore: base, vars: vars}
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Get returns the environment value for an overridden key, if set.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.lookup(key); ok {
		return v, true
	}
	return s.ConfigStore.Get(key)
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return s.ConfigStore.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	if v, ok := s.Get(key); ok {
		return convert.Int(v)
	}
	return 0
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	if v, ok := s.lookup(key); ok {
		return v == "1" || v == "true"
	}
	return s.ConfigStore.GetBool(key)
}

func (s *ConfigStore) lookup(key string) (string, bool) {
	name, ok := s.vars[key]
	if !ok {
		return "", false
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
