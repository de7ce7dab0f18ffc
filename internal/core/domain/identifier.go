package domain

import "strings"

// Default colours applied when the store holds no colour, or a colour that
// cannot be parsed.
const (
	// DefaultViewerColor is the background used for the viewer's own name.
	DefaultViewerColor = "#d1ecf1"

	// DefaultMarkerColor is the background used for watched identifiers
	// without a usable colour of their own.
	DefaultMarkerColor = "#fff3cd"
)

// Identifier is a literal string searched for in page text, together with
// the background colour its markers are painted with.
type Identifier struct {
	Text  string `json:"text" toml:"text"`
	Color string `json:"color" toml:"color"`
}

// ViewerIdentity is the identifier representing the current user.
// It has the same shape as Identifier but its markers are flagged as self.
type ViewerIdentity struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// IsZero reports whether no viewer is configured.
func (v ViewerIdentity) IsZero() bool {
	return strings.TrimSpace(v.Text) == ""
}

// Configuration is the read-through copy of the identifier settings.
// Watchlist texts are pairwise distinct (case-insensitive); the viewer may
// also appear in the watchlist, in which case viewer styling wins.
type Configuration struct {
	Viewer    ViewerIdentity `json:"viewer"`
	Watchlist []Identifier   `json:"watchlist"`
}

// IsEmpty reports whether there is nothing to search for.
func (c Configuration) IsEmpty() bool {
	return len(c.Texts()) == 0
}

// Texts returns the union of the viewer text and the watchlist texts,
// trimmed, with blanks dropped and case-insensitive duplicates removed.
// Order is viewer first, then watchlist order.
func (c Configuration) Texts() []string {
	var texts []string
	seen := make(map[string]bool)

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		key := strings.ToLower(s)
		if seen[key] {
			return
		}
		seen[key] = true
		texts = append(texts, s)
	}

	add(c.Viewer.Text)
	for _, id := range c.Watchlist {
		add(id.Text)
	}
	return texts
}

// Find returns the watchlist entry whose text equals text case-insensitively.
func (c Configuration) Find(text string) (Identifier, bool) {
	text = strings.TrimSpace(text)
	for _, id := range c.Watchlist {
		if strings.EqualFold(strings.TrimSpace(id.Text), text) {
			return id, true
		}
	}
	return Identifier{}, false
}

// Resolve maps matched text to its marker background and self flag.
// The viewer is checked first, then the watchlist. The boolean result is
// false when neither matched and the default colour was used.
func (c Configuration) Resolve(matched string) (color string, self bool, ok bool) {
	if !c.Viewer.IsZero() && strings.EqualFold(strings.TrimSpace(c.Viewer.Text), matched) {
		return c.Viewer.Color, true, true
	}
	if id, found := c.Find(matched); found {
		return id.Color, false, true
	}
	return DefaultMarkerColor, false, false
}

// Clone returns a deep copy so callers can hand the configuration to
// another owner without sharing the watchlist backing array.
func (c Configuration) Clone() Configuration {
	out := c
	if c.Watchlist != nil {
		out.Watchlist = make([]Identifier, len(c.Watchlist))
		copy(out.Watchlist, c.Watchlist)
	}
	return out
}
