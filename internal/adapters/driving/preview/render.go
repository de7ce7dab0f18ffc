package preview

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/colour"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
)

// EmptyMessage is shown when there is nothing to preview.
const EmptyMessage = "Configure a viewer or identifiers to see a preview."

// SampleText builds the sample comment used to preview cfg. It reports
// false when cfg has nothing to highlight.
func SampleText(cfg domain.Configuration) (string, bool) {
	if cfg.IsEmpty() {
		return "", false
	}

	var b strings.Builder
	b.WriteString("Example GitHub comment: ")
	if !cfg.Viewer.IsZero() {
		b.WriteString("Hey ")
		b.WriteString(strings.TrimSpace(cfg.Viewer.Text))
		b.WriteString(", ")
	}
	b.WriteString("thanks for the contribution!")

	var ids []string
	for _, id := range cfg.Watchlist {
		if t := strings.TrimSpace(id.Text); t != "" {
			ids = append(ids, t)
		}
	}
	if len(ids) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(ids, ", "))
		b.WriteString(" will review this.")
	}
	return b.String(), true
}

// Text annotates text with cfg and renders it with marker styling.
func Text(text string, cfg domain.Configuration) string {
	p := annotator.Compile(cfg)
	var b strings.Builder
	for _, seg := range annotator.Split(text, p, cfg) {
		if !seg.IsMarker() {
			b.WriteString(seg.Text)
			continue
		}
		m := seg.Marker
		b.WriteString(MarkerStyle(m.Background, m.Foreground, m.Self).Render(m.Text))
	}
	return b.String()
}

// Badge renders text on background with a contrasting foreground.
func Badge(text, background string) string {
	bg := colour.Normalise(background, domain.DefaultViewerColor)
	return MarkerStyle(bg, colour.Contrast(bg), false).Padding(0, 1).Render(text)
}

// blockTags end a line when rendering a document.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "section": true, "article": true,
	"header": true, "footer": true, "main": true, "table": true, "ul": true, "ol": true,
}

// Document renders the visible text of an annotated document, painting
// existing marker spans with the colours recorded on them.
func Document(doc *dom.Document) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(collapse(n.Data))
			return
		case html.ElementNode:
			if dom.HasClass(n, domain.MarkerClass) {
				bg, fg := annotator.MarkerStyle(n)
				self := dom.HasClass(n, domain.SelfClass)
				b.WriteString(MarkerStyle(bg, fg, self).Render(dom.TextContent(n)))
				return
			}
			if !annotator.IsEligible(n) || dom.TagName(n) == "head" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[dom.TagName(n)] {
			b.WriteString("\n")
		}
	}
	walk(doc.Body())
	return tidy(b.String())
}

// collapse squeezes whitespace runs to single spaces.
func collapse(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	lead := strings.TrimLeft(s, " \t\r\n") != s
	trail := strings.TrimRight(s, " \t\r\n") != s
	out := strings.Join(strings.Fields(s), " ")
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}

// tidy trims each line and drops blank ones.
func tidy(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
