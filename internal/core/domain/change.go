package domain

import "reflect"

// Configuration store keys.
const (
	KeyViewer      = "my_username"
	KeyViewerColor = "username_color"
	KeyWatchlist   = "identifiers"
)

// Change is the old and new value of one store key.
// A nil NewValue means the key was removed.
type Change struct {
	OldValue any
	NewValue any
}

// ChangeSet maps store keys to their changes, delivered to subscribers
// after each write.
type ChangeSet map[string]Change

// Touches reports whether any of the identifier keys changed.
func (cs ChangeSet) Touches() bool {
	for _, key := range []string{KeyViewer, KeyViewerColor, KeyWatchlist} {
		if _, ok := cs[key]; ok {
			return true
		}
	}
	return false
}

// DefaultRecord returns the store defaults for the identifier keys.
func DefaultRecord() map[string]any {
	return map[string]any{
		KeyViewer:      "",
		KeyViewerColor: DefaultViewerColor,
		KeyWatchlist:   []any{},
	}
}

// Diff returns the changes between two records. Only keys present in
// next are compared; keys whose values are deeply equal are omitted.
func Diff(prev, next map[string]any) ChangeSet {
	changes := make(ChangeSet)
	for key, value := range next {
		old, existed := prev[key]
		if existed && reflect.DeepEqual(old, value) {
			continue
		}
		changes[key] = Change{OldValue: old, NewValue: value}
	}
	return changes
}
