package dom

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/highlight/internal/core/domain"
)

// MutationRecord describes one structural change.
type MutationRecord struct {
	Target  *html.Node
	Added   []*html.Node
	Removed []*html.Node
}

// HasAddedElement reports whether the change added at least one element node.
func (r MutationRecord) HasAddedElement() bool {
	for _, n := range r.Added {
		if n.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// Observer receives mutation records.
type Observer func([]MutationRecord)

// Document is a mutable HTML tree with mutation observers.
type Document struct {
	root      *html.Node
	observers map[int]Observer
	nextID    int
}

// New wraps an existing tree. root is normally the html.DocumentNode
// returned by html.Parse.
func New(root *html.Node) *Document {
	return &Document{
		root:      root,
		observers: make(map[int]Observer),
	}
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return New(root), nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the body element, or the root if there is none.
func (d *Document) Body() *html.Node {
	if body := findElement(d.root, atom.Body); body != nil {
		return body
	}
	return d.root
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document to a string.
func (d *Document) String() string {
	var sb strings.Builder
	_ = d.Render(&sb)
	return sb.String()
}

// Observe registers fn for mutation records. The returned function
// unregisters it.
func (d *Document) Observe(fn Observer) (cancel func()) {
	id := d.nextID
	d.nextID++
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

// QueryAll returns the nodes matching expr, in document order.
func (d *Document) QueryAll(expr *xpath.Expr) []*html.Node {
	return htmlquery.QuerySelectorAll(d.root, expr)
}

// Find evaluates an XPath expression string against the document.
func (d *Document) Find(expr string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: xpath %q: %v", domain.ErrInvalidInput, expr, err)
	}
	return nodes, nil
}

// ReplaceNode substitutes old with replacement, in order, as one change.
// Observers see a single record once every replacement node is in place.
func (d *Document) ReplaceNode(old *html.Node, replacement ...*html.Node) error {
	if old == nil {
		return fmt.Errorf("%w: nil node", domain.ErrInvalidInput)
	}
	parent := old.Parent
	if parent == nil {
		return domain.ErrDetachedNode
	}
	for _, n := range replacement {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		parent.InsertBefore(n, old)
	}
	parent.RemoveChild(old)

	d.notify(MutationRecord{Target: parent, Added: replacement, Removed: []*html.Node{old}})
	return nil
}

// AppendChild appends child to parent.
func (d *Document) AppendChild(parent, child *html.Node) error {
	if parent == nil || child == nil {
		return fmt.Errorf("%w: nil node", domain.ErrInvalidInput)
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
	d.notify(MutationRecord{Target: parent, Added: []*html.Node{child}})
	return nil
}

// RemoveChild detaches child from its parent.
func (d *Document) RemoveChild(child *html.Node) error {
	if child == nil {
		return fmt.Errorf("%w: nil node", domain.ErrInvalidInput)
	}
	parent := child.Parent
	if parent == nil {
		return domain.ErrDetachedNode
	}
	parent.RemoveChild(child)
	d.notify(MutationRecord{Target: parent, Removed: []*html.Node{child}})
	return nil
}

// AppendHTML parses fragment in the context of parent and appends the result.
func (d *Document) AppendHTML(parent *html.Node, fragment string) error {
	if parent == nil {
		return fmt.Errorf("%w: nil node", domain.ErrInvalidInput)
	}
	context := parent
	if context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.notify(MutationRecord{Target: parent, Added: nodes})
	return nil
}

// ReplaceBody moves the body content of src into this document's body,
// replacing what was there. It is how a client-side navigation swaps
// page content in place.
func (d *Document) ReplaceBody(src *Document) error {
	if src == nil {
		return fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}
	body := d.Body()
	var removed []*html.Node
	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		body.RemoveChild(c)
		removed = append(removed, c)
		c = next
	}

	srcBody := src.Body()
	var added []*html.Node
	for c := srcBody.FirstChild; c != nil; {
		next := c.NextSibling
		srcBody.RemoveChild(c)
		body.AppendChild(c)
		added = append(added, c)
		c = next
	}

	d.notify(MutationRecord{Target: body, Added: added, Removed: removed})
	return nil
}

// MergeAdjacentText joins consecutive text children of parent and drops
// empty ones.
func (d *Document) MergeAdjacentText(parent *html.Node) {
	if parent == nil {
		return
	}
	var removed []*html.Node
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.TextNode {
			c = next
			continue
		}
		for next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			after := next.NextSibling
			parent.RemoveChild(next)
			removed = append(removed, next)
			next = after
		}
		if c.Data == "" {
			parent.RemoveChild(c)
			removed = append(removed, c)
		}
		c = next
	}
	if len(removed) > 0 {
		d.notify(MutationRecord{Target: parent, Removed: removed})
	}
}

func (d *Document) notify(record MutationRecord) {
	if len(d.observers) == 0 {
		return
	}
	records := []MutationRecord{record}
	// Observers may cancel themselves while being notified.
	ids := make([]int, 0, len(d.observers))
	for id := range d.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := d.observers[id]; ok {
			fn(records)
		}
	}
}
