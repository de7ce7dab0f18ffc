package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/pubsub"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for
// testing and one-shot runs.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
	hub    pubsub.Hub
}

// NewConfigStore creates a new in-memory config store seeded with initial.
func NewConfigStore(initial map[string]any) *ConfigStore {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = copyValue(v)
	}
	return &ConfigStore{values: values}
}

// Get returns the stored value for each key of defaults, or the default.
func (s *ConfigStore) Get(defaults map[string]any) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]any, len(defaults))
	for key, def := range defaults {
		if v, ok := s.values[key]; ok {
			result[key] = copyValue(v)
		} else {
			result[key] = copyValue(def)
		}
	}
	return result, nil
}

// Set merges values into the store and notifies subscribers of the keys
// that changed.
func (s *ConfigStore) Set(values map[string]any) error {
	s.mu.Lock()
	prev := maps.Clone(s.values)
	for k, v := range values {
		s.values[k] = copyValue(v)
	}
	changes := domain.Diff(prev, values)
	s.mu.Unlock()

	s.hub.Publish(changes)
	return nil
}

// Subscribe registers a change listener.
func (s *ConfigStore) Subscribe(listener func(domain.ChangeSet)) func() {
	return s.hub.Subscribe(listener)
}

// Snapshot returns a copy of every stored value.
func (s *ConfigStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = copyValue(v)
	}
	return out
}

// Path returns the configuration location.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

// copyValue deep-copies the slice and map shapes used by records so callers
// cannot mutate stored values.
func copyValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}
