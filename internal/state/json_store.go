package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StateFileName is the record shared between the CLI and the watcher.
const StateFileName = "favorites.json"

// FileStore implements Store using a single JSON file with atomic replace.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store rooted at dataDir.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{path: filepath.Join(dataDir, StateFileName)}
}

// Path returns the absolute location of the state file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and parses the state file. A missing file yields defaults.
func (s *FileStore) Load() (*MonitorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() (*MonitorState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("%w: read %s: %v", ErrCorruptState, s.path, err)
	}

	var m MonitorState
	if err := json.Unmarshal(data, &m); err != nil {
		// Older builds persisted a plain favorites list.
		var favorites []string
		if legacyErr := json.Unmarshal(data, &favorites); legacyErr == nil {
			migrated := Default()
			migrated.Favorites = favorites
			migrated.Normalize()
			return migrated, nil
		}
		return Default(), fmt.Errorf("%w: parse %s: %v", ErrCorruptState, s.path, err)
	}

	m.Normalize()
	return &m, nil
}

// Save atomically replaces the state file via write-temp-then-rename.
func (s *FileStore) Save(m *MonitorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(m)
}

func (s *FileStore) saveLocked(m *MonitorState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temporary state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Update runs fn against the freshly loaded state and persists the result
// under the store lock. A corrupt record is replaced by defaults before fn
// runs, so an explicit user action can always recover the store.
func (s *FileStore) Update(fn func(*MonitorState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadLocked()
	if err != nil {
		m = Default()
	}
	if err := fn(m); err != nil {
		return err
	}
	return s.saveLocked(m)
}
