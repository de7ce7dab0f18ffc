package domain

// Marker class names. Later scans and un-annotation recognise markers
// by MarkerClass alone.
const (
	MarkerClass = "gh-highlight-me"
	SelfClass   = "gh-highlight-me-self"
)

// Marker describes one rendered annotation around a matched span.
type Marker struct {
	Text       string
	Background string
	Foreground string
	Self       bool
}

// Segment is one piece of an annotated text run: either literal text
// (Marker == nil) or a marker whose text is Text.
type Segment struct {
	Text   string
	Marker *Marker
}

// IsMarker reports whether the segment is a marker.
func (s Segment) IsMarker() bool {
	return s.Marker != nil
}
