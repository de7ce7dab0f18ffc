package annotator

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/highlight/internal/colour"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
)

// Mutator applies structural changes to the live document.
// *dom.Document implements it.
type Mutator interface {
	ReplaceNode(old *html.Node, replacement ...*html.Node) error
	MergeAdjacentText(parent *html.Node)
}

// Ensure dom.Document implements Mutator.
var _ Mutator = (*dom.Document)(nil)

// Split cuts text into literal and marker segments for every match of p.
// Marker colours come from config: the viewer first, then the watchlist,
// then the default marker colour. Concatenating the segment texts yields
// text unchanged. A nil pattern or no match yields a single literal
// segment.
func Split(text string, p *Pattern, config domain.Configuration) []domain.Segment {
	matches := p.FindAllIndex(text)
	if len(matches) == 0 {
		return []domain.Segment{{Text: text}}
	}

	segments := make([]domain.Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > last {
			segments = append(segments, domain.Segment{Text: text[last:start]})
		}
		matched := text[start:end]
		segments = append(segments, domain.Segment{Text: matched, Marker: newMarker(matched, config)})
		last = end
	}
	if last < len(text) {
		segments = append(segments, domain.Segment{Text: text[last:]})
	}
	return segments
}

func newMarker(matched string, config domain.Configuration) *domain.Marker {
	color, self, _ := config.Resolve(matched)
	fallback := domain.DefaultMarkerColor
	if self {
		fallback = domain.DefaultViewerColor
	}
	background := colour.Normalise(color, fallback)
	return &domain.Marker{
		Text:       matched,
		Background: background,
		Foreground: colour.Contrast(background),
		Self:       self,
	}
}

// MarkerNode renders m as a detached marker span.
func MarkerNode(m *domain.Marker) *html.Node {
	class := domain.MarkerClass
	if m.Self {
		class += " " + domain.SelfClass
	}
	style := fmt.Sprintf("background-color: %s; color: %s;", m.Background, m.Foreground)
	span := dom.NewElement("span", "class", class, "style", style)
	span.AppendChild(dom.NewText(m.Text))
	return span
}

// TextAnnotator replaces matching text runs with marker-interleaved
// replacements.
type TextAnnotator struct {
	mutator Mutator
}

// NewTextAnnotator creates an annotator that mutates through m.
func NewTextAnnotator(m Mutator) *TextAnnotator {
	return &TextAnnotator{mutator: m}
}

// Annotate replaces run with literal and marker nodes for every match and
// returns the number of markers inserted. Runs that do not match, and
// runs whose container is ineligible, are left alone and return 0. The
// substitution is a single ReplaceNode call, so no partial state is
// observable.
func (a *TextAnnotator) Annotate(run *html.Node, p *Pattern, config domain.Configuration) (int, error) {
	if run == nil || run.Type != html.TextNode {
		return 0, fmt.Errorf("%w: not a text node", domain.ErrInvalidInput)
	}
	if p == nil || !p.MatchString(run.Data) {
		return 0, nil
	}
	parent := run.Parent
	if parent == nil {
		return 0, domain.ErrDetachedNode
	}
	if !IsEligible(parent) {
		return 0, nil
	}

	segments := Split(run.Data, p, config)
	replacement := make([]*html.Node, 0, len(segments))
	markers := 0
	for _, seg := range segments {
		if seg.IsMarker() {
			replacement = append(replacement, MarkerNode(seg.Marker))
			markers++
			continue
		}
		replacement = append(replacement, dom.NewText(seg.Text))
	}
	if markers == 0 {
		return 0, nil
	}

	if err := a.mutator.ReplaceNode(run, replacement...); err != nil {
		return 0, fmt.Errorf("replacing text run: %w", err)
	}
	return markers, nil
}

// MarkerStyle returns the background and foreground recorded on a marker
// span's style attribute.
func MarkerStyle(n *html.Node) (background, foreground string) {
	for _, decl := range strings.Split(dom.Attr(n, "style"), ";") {
		key, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "background-color":
			background = strings.TrimSpace(val)
		case "color":
			foreground = strings.TrimSpace(val)
		}
	}
	return background, foreground
}
