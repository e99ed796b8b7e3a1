package state

import (
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store for tests and the status command.
// Optional error injection mimics corrupt or unwritable storage.
type MemoryStore struct {
	mu      sync.Mutex
	current *MonitorState

	// LoadErr and SaveErr, when set, are returned by the respective calls.
	LoadErr error
	SaveErr error
}

// NewMemoryStore seeds an in-memory store; a nil initial state starts from
// defaults.
func NewMemoryStore(initial *MonitorState) *MemoryStore {
	if initial == nil {
		initial = Default()
	}
	initial.Normalize()
	return &MemoryStore{current: initial}
}

func (s *MemoryStore) Load() (*MonitorState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return Default(), s.LoadErr
	}
	return cloneState(s.current), nil
}

func (s *MemoryStore) Save(m *MonitorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.current = cloneState(m)
	return nil
}

func (s *MemoryStore) Update(fn func(*MonitorState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return s.LoadErr
	}
	m := cloneState(s.current)
	if err := fn(m); err != nil {
		return err
	}
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.current = m
	return nil
}

// cloneState deep-copies via JSON round trip; state is small and this keeps
// the copy honest as fields evolve.
func cloneState(m *MonitorState) *MonitorState {
	data, err := json.Marshal(m)
	if err != nil {
		return Default()
	}
	var out MonitorState
	if err := json.Unmarshal(data, &out); err != nil {
		return Default()
	}
	out.Normalize()
	return &out
}
