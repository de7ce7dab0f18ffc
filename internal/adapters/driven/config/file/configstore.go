package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/logger"
	"github.com/custodia-labs/highlight/internal/pubsub"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Configuration is stored in a TOML file within the highlight config directory.
//
// Values are held in the form TOML decodes them to, so a value written with
// Set compares equal to the same value read back from disk.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
	hub      pubsub.Hub

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.highlight/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".highlight")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get returns the stored value for each key of defaults, or the default.
func (s *ConfigStore) Get(defaults map[string]any) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]any, len(defaults))
	for key, def := range defaults {
		if v, ok := s.data[key]; ok {
			result[key] = v
		} else {
			result[key] = def
		}
	}
	return result, nil
}

// Set merges values into the file and notifies subscribers of the keys
// whose stored value changed. A nil value deletes the key.
func (s *ConfigStore) Set(values map[string]any) error {
	s.mu.Lock()

	merged := maps.Clone(s.data)
	for k, v := range values {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	raw, err := toml.Marshal(merged)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encoding config: %w", err)
	}

	// Reading back gives the canonical form later reloads will produce.
	canonical, err := decode(raw)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("decoding written config: %w", err)
	}

	if err := writeAtomic(s.filePath, raw); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("writing config: %w", err)
	}

	prev := s.data
	s.data = canonical
	changes := diffKeys(prev, canonical, values)
	s.mu.Unlock()

	s.hub.Publish(changes)
	return nil
}

// Subscribe registers a change listener. Listeners are called from the
// goroutine that called Set, or from the watcher goroutine for external
// edits.
func (s *ConfigStore) Subscribe(listener func(domain.ChangeSet)) func() {
	return s.hub.Subscribe(listener)
}

// Load reads configuration from the TOML file, replacing the cached values.
// A missing file is an empty configuration.
func (s *ConfigStore) Load() error {
	_, err := s.reload()
	return err
}

// Watch starts watching the config directory for external edits. Each edit
// that changes a stored value is delivered to subscribers. Calling Watch
// again is a no-op.
func (s *ConfigStore) Watch() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := w.Add(filepath.Dir(s.filePath)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(s.filePath), err)
	}

	s.watcher = w
	s.done = make(chan struct{})
	go s.watch(w, s.done)
	return nil
}

// Close stops watching. It is safe to call without Watch.
func (s *ConfigStore) Close() error {
	s.watchMu.Lock()
	w, done := s.watcher, s.done
	s.watcher, s.done = nil, nil
	s.watchMu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func (s *ConfigStore) watch(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.filePath {
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			changes, err := s.reload()
			if err != nil {
				logger.Error("reloading %s: %v", s.filePath, err)
				continue
			}
			if len(changes) > 0 {
				logger.Debug("Config file changed: %d key(s)", len(changes))
			}
			s.hub.Publish(changes)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Error("watching %s: %v", s.filePath, err)
		}
	}
}

// reload reads the file and returns what changed against the cache.
// On a decode error the cache is kept.
func (s *ConfigStore) reload() (domain.ChangeSet, error) {
	raw, err := os.ReadFile(s.filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	loaded := make(map[string]any)
	if err == nil {
		if loaded, err = decode(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedConfig, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changes := domain.Diff(s.data, loaded)
	for key, old := range s.data {
		if _, ok := loaded[key]; !ok {
			changes[key] = domain.Change{OldValue: old}
		}
	}
	s.data = loaded
	return changes, nil
}

func decode(raw []byte) (map[string]any, error) {
	var loaded map[string]any
	if err := toml.Unmarshal(raw, &loaded); err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = make(map[string]any)
	}
	return loaded, nil
}

// diffKeys compares prev and next for the keys named in written.
func diffKeys(prev, next, written map[string]any) domain.ChangeSet {
	subset := make(map[string]any, len(written))
	changes := make(domain.ChangeSet)
	for key := range written {
		if v, ok := next[key]; ok {
			subset[key] = v
		} else if old, existed := prev[key]; existed {
			changes[key] = domain.Change{OldValue: old}
		}
	}
	for key, change := range domain.Diff(prev, subset) {
		changes[key] = change
	}
	return changes
}

// writeAtomic replaces path with data through a temporary file in the same
// directory so the watcher never reads a half-written file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	// Restricted permissions
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
