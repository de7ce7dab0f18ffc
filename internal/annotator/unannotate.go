package annotator

import (
	"golang.org/x/net/html"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Unannotate unwraps every marker under root back into plain text and
// merges the text it leaves behind with its neighbours. It returns the
// number of markers removed.
func Unannotate(root *html.Node, m Mutator) int {
	if root == nil {
		return 0
	}

	var markers []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.HasClass(c, domain.MarkerClass) {
				markers = append(markers, c)
				continue
			}
			walk(c)
		}
	}
	walk(root)

	parents := make(map[*html.Node]bool)
	var order []*html.Node
	removed := 0
	for _, marker := range markers {
		parent := marker.Parent
		if parent == nil {
			continue
		}
		if err := m.ReplaceNode(marker, dom.NewText(dom.TextContent(marker))); err != nil {
			logger.Error("unwrapping marker %q: %v", dom.TextContent(marker), err)
			continue
		}
		removed++
		if !parents[parent] {
			parents[parent] = true
			order = append(order, parent)
		}
	}
	for _, parent := range order {
		m.MergeAdjacentText(parent)
	}
	return removed
}

// Markers returns the text of every marker under root in document order,
// prefixed with "*" for self markers. Useful for comparing annotation sets.
func Markers(root *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.HasClass(c, domain.MarkerClass) {
				text := dom.TextContent(c)
				if dom.HasClass(c, domain.SelfClass) {
					text = "*" + text
				}
				out = append(out, text)
				continue
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
