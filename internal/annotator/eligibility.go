package annotator

import (
	"golang.org/x/net/html"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
)

// skippedTags are element kinds whose text is never annotated: content
// that does not render as page text, and editing surfaces.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"input":    true,
	"textarea": true,
	"select":   true,
}

// IsEligible reports whether n may contain annotatable text. Markers,
// non-rendering elements and form inputs are rejected. Non-element nodes
// are eligible.
func IsEligible(n *html.Node) bool {
	if n == nil {
		return false
	}
	if n.Type != html.ElementNode {
		return true
	}
	if dom.HasClass(n, domain.MarkerClass) {
		return false
	}
	return !skippedTags[dom.TagName(n)]
}

// InsideMarker reports whether n or any ancestor up to and including stop
// is a marker. A nil stop walks to the document root.
func InsideMarker(n, stop *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if dom.HasClass(n, domain.MarkerClass) {
			return true
		}
		if n == stop {
			break
		}
	}
	return false
}
