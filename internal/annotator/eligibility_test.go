package annotator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
)

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name     string
		node     *html.Node
		expected bool
	}{
		{name: "Nil", node: nil, expected: false},
		{name: "Text node", node: dom.NewText("x"), expected: true},
		{name: "Paragraph", node: dom.NewElement("p"), expected: true},
		{name: "Span with other class", node: dom.NewElement("span", "class", "author"), expected: true},
		{name: "Marker", node: dom.NewElement("span", "class", domain.MarkerClass), expected: false},
		{name: "Self marker", node: dom.NewElement("span", "class", domain.MarkerClass+" "+domain.SelfClass), expected: false},
		{name: "Script", node: dom.NewElement("script"), expected: false},
		{name: "Style", node: dom.NewElement("style"), expected: false},
		{name: "Noscript", node: dom.NewElement("noscript"), expected: false},
		{name: "Iframe", node: dom.NewElement("iframe"), expected: false},
		{name: "Object", node: dom.NewElement("object"), expected: false},
		{name: "Input", node: dom.NewElement("input"), expected: false},
		{name: "Textarea", node: dom.NewElement("textarea"), expected: false},
		{name: "Select", node: dom.NewElement("select"), expected: false},
		{name: "Uppercase tag", node: &html.Node{Type: html.ElementNode, Data: "TEXTAREA"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsEligible(tt.node))
		})
	}
}

func TestInsideMarker(t *testing.T) {
	root := dom.NewElement("div")
	marker := dom.NewElement("span", "class", domain.MarkerClass)
	inner := dom.NewElement("b")
	text := dom.NewText("bob")
	root.AppendChild(marker)
	marker.AppendChild(inner)
	inner.AppendChild(text)

	assert.True(t, InsideMarker(text, nil))
	assert.True(t, InsideMarker(text, marker))
	assert.False(t, InsideMarker(text, inner))
	assert.False(t, InsideMarker(root, nil))
}
