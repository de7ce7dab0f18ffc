package annotator

import (
	"fmt"
	"strings"

	"github.com/antchfx/xpath"

	"github.com/custodia-labs/highlight/internal/core/domain"
)

// Region is a named, compiled selector for a content area of the host page.
type Region struct {
	Name string
	expr *xpath.Expr
}

// NewRegion compiles an XPath expression into a Region.
func NewRegion(name, expr string) (Region, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return Region{}, fmt.Errorf("%w: region %s: %v", domain.ErrInvalidInput, name, err)
	}
	return Region{Name: name, expr: compiled}, nil
}

// MustRegion is like NewRegion but panics on a malformed expression.
func MustRegion(name, expr string) Region {
	r, err := NewRegion(name, expr)
	if err != nil {
		panic(err)
	}
	return r
}

// Expr returns the XPath source.
func (r Region) Expr() string {
	if r.expr == nil {
		return ""
	}
	return r.expr.String()
}

// class matches elements carrying a class token, optionally restricted
// to a tag ("*" for any).
func class(tag, token string) string {
	return fmt.Sprintf("//%s[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", tag, token)
}

// classContains matches elements whose class attribute contains sub
// anywhere, the equivalent of [class*="sub"].
func classContains(sub string) string {
	return fmt.Sprintf("//*[contains(@class, '%s')]", sub)
}

func attrEquals(key, val string) string {
	return fmt.Sprintf("//*[@%s='%s']", key, val)
}

// GitHubRegions returns the curated content areas of GitHub pages:
// discussions, comments, issue and pull request lists, commit lists,
// author links and file headers. Broad catch-alls come last.
func GitHubRegions() []Region {
	specs := []struct{ name, expr string }{
		// Issues and pull requests
		{".js-discussion", class("*", "js-discussion")},
		{".comment-body", class("*", "comment-body")},
		{".timeline-comment", class("*", "timeline-comment")},
		{".review-comment", class("*", "review-comment")},
		{".js-issue-row", class("*", "js-issue-row")},
		{".js-navigation-item", class("*", "js-navigation-item")},
		{".TimelineItem-body", class("*", "TimelineItem-body")},
		{".TimelineItem", class("*", "TimelineItem")},
		// Commit lists
		{`[data-testid="list-view-items"]`, attrEquals("data-testid", "list-view-items")},
		{`[data-testid="commit-row-item"]`, attrEquals("data-testid", "commit-row-item")},
		{".js-commits-list-item", class("*", "js-commits-list-item")},
		{".js-navigation-container", class("*", "js-navigation-container")},
		{".commit-title", class("*", "commit-title")},
		{".commit-desc", class("*", "commit-desc")},
		{".commit-message", class("*", "commit-message")},
		{".commits-list-item", class("*", "commits-list-item")},
		{".markdown-title", class("*", "markdown-title")},
		{"a.message", class("a", "message")},
		{".commit-group", class("*", "commit-group")},
		{"li.Box-row", class("li", "Box-row")},
		// Authors
		{"td.commit-author", class("td", "commit-author")},
		{"a.commit-author", class("a", "commit-author")},
		{".author", class("*", "author")},
		{`[data-hovercard-type="user"]`, attrEquals("data-hovercard-type", "user")},
		// Others
		{".Box-row", class("*", "Box-row")},
		{".file-header", class("*", "file-header")},
		{"[data-hpc]", "//*[@data-hpc]"},
		{".react-directory-commit-message", class("*", "react-directory-commit-message")},
		{"#repo-content-turbo-frame", "//*[@id='repo-content-turbo-frame']"},
		// Broad selectors for the newer UI
		{`[class*="commit"]`, classContains("commit")},
		{`[class*="author"]`, classContains("author")},
		{`main [role="main"]`, "//main//*[@role='main']"},
		{"main", "//main"},
	}

	regions := make([]Region, 0, len(specs)+1)
	for _, s := range specs {
		regions = append(regions, MustRegion(s.name, s.expr))
	}
	return append(regions, FallbackRegion())
}

// FallbackRegion covers the whole body, for pages whose structure none
// of the curated regions recognise.
func FallbackRegion() Region {
	return MustRegion("body", "//body")
}

// ParseRegions compiles user-supplied XPath roots, naming each by its
// expression.
func ParseRegions(exprs []string) ([]Region, error) {
	regions := make([]Region, 0, len(exprs))
	for _, e := range exprs {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		r, err := NewRegion(e, e)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}
