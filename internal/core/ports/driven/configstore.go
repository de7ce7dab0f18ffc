package driven

import "github.com/custodia-labs/highlight/internal/core/domain"

// ConfigStore is the key-value store holding identifier configuration.
// Implementations handle persistence (TOML files, SQLite, memory) and
// notify subscribers after every change.
type ConfigStore interface {
	// Get returns the stored values for the keys of defaults, using the
	// default value for any key that is absent.
	Get(defaults map[string]any) (map[string]any, error)

	// Set writes a partial record. Keys not named are left unchanged.
	// Subscribers receive a ChangeSet naming only the keys whose value
	// actually changed.
	Set(values map[string]any) error

	// Subscribe registers listener for change notifications. Listeners
	// may be called from any goroutine. The returned function
	// unregisters the listener.
	Subscribe(listener func(domain.ChangeSet)) (unsubscribe func())

	// Path returns where the store persists its data.
	Path() string
}
