package driving

import "github.com/custodia-labs/highlight/internal/core/domain"

// ConfigService manages the identifier configuration.
type ConfigService interface {
	// Get returns the current configuration.
	Get() (domain.Configuration, error)

	// SetViewer sets the viewer's name. An empty color keeps the current one.
	SetViewer(text, color string) error

	// AddIdentifier appends a watched identifier. Returns
	// domain.ErrAlreadyExists for a case-insensitive duplicate.
	AddIdentifier(text, color string) error

	// RemoveIdentifier deletes a watched identifier by case-insensitive text.
	RemoveIdentifier(text string) error

	// SetIdentifierColor changes the colour of a watched identifier.
	SetIdentifierColor(text, color string) error

	// Migrate converts legacy stored formats in place. It reports whether
	// anything was rewritten.
	Migrate() (bool, error)
}
