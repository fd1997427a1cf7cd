// Package persistence handles durable storage of the keeper state file.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/state"
)

// DefaultPath returns the state file location under the XDG data dir,
// creating parent directories as needed.
func DefaultPath() (string, error) {
	path, err := xdg.DataFile("volkeeper/state.json")
	if err != nil {
		return "", fmt.Errorf("failed to get state file path: %w", err)
	}
	return path, nil
}

// Store reads and writes the persistent state as pretty-printed JSON.
// Load never fails the caller and Save never panics; the worst either does
// is log.
type Store struct {
	path string
	log  slog.Logger
}

// NewStore creates a store backed by the given file path.
func NewStore(path string, log slog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing or corrupt file yields the default
// state so a broken file can never keep the program from starting.
func (s *Store) Load() *state.PersistentState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnf("Failed to read state file %s: %v", s.path, err)
		}
		return state.Default()
	}

	// Unmarshal over the defaults so missing fields keep their default
	// values, in particular the communication-device switches.
	st := state.Default()
	if err := json.Unmarshal(data, st); err != nil {
		s.log.Warnf("State file %s is corrupt, starting fresh: %v", s.path, err)
		return state.Default()
	}
	if st.Devices == nil {
		st.Devices = make(map[string]*state.DeviceSettings)
	}
	return st
}

// Save writes the state atomically (temp file plus rename). Failures are
// logged and otherwise ignored; the next mutation retries naturally.
func (s *Store) Save(st *state.PersistentState) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.log.Errorf("Failed to marshal state: %v", err)
		return
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.Errorf("Failed to create state directory %s: %v", dir, err)
			return
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Errorf("Failed to write state file: %v", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Errorf("Failed to replace state file: %v", err)
	}
}
