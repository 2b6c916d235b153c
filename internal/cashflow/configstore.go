package cashflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"TreasuryDash/internal/logger"
)

// ConfigStore holds the live engine configuration backed by a file. Readers
// get an immutable Config; Replace validates, persists and swaps it.
type ConfigStore struct {
	mu      sync.RWMutex
	path    string
	current Config
}

// NewConfigStore loads path with LoadConfig.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path, current: LoadConfig(path)}
}

// NewMemoryConfigStore wraps cfg without a backing file. Replace only swaps
// the in-memory value.
func NewMemoryConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{current: cfg}
}

func (s *ConfigStore) Path() string { return s.path }

func (s *ConfigStore) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the backing file.
func (s *ConfigStore) Reload() Config {
	if s.path == "" {
		return s.Current()
	}
	c := LoadConfig(s.path)
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
	return c
}

// Replace validates f, writes it to the backing file and makes it current.
// Entries that fail validation are dropped and reported as warnings; the
// file is written in its canonical form.
func (s *ConfigStore) Replace(f ConfigFile) (Config, []string, error) {
	const op = "cashflow.ConfigStore.Replace"

	c, warnings := ConfigFromFile(f)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		data, err := EncodeConfigFile(c.File(), isYAML(s.path))
		if err != nil {
			return s.current, warnings, fmt.Errorf("%s: encode: %w", op, err)
		}
		if err := writeFileAtomic(s.path, data); err != nil {
			return s.current, warnings, fmt.Errorf("%s: %w", op, err)
		}
	}
	s.current = c

	logger.WithComponent("cashflow-config").Info().
		Str("path", s.path).
		Int("warnings", len(warnings)).
		Msg("Cashflow configuration replaced")
	return c, warnings, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
