package annotator

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/highlight/internal/core/domain"
)

// Pattern is a compiled, read-only matcher for a configuration's
// identifiers. A nil *Pattern means there is nothing to match.
type Pattern struct {
	re    *regexp.Regexp
	terms []string
}

// Compile builds a case-insensitive whole-word alternation over the
// viewer text and watchlist texts, each escaped as a literal. It returns
// nil when the configuration has no non-blank identifiers.
//
// Alternatives are tried in union order (viewer, then watchlist) and the
// first that matches at a position wins. When one identifier is a prefix
// of another at a word boundary, for example "ada" and "ada lovelace",
// the earlier one is matched; overlapping identifiers are a known
// limitation. Word boundaries are ASCII, so identifiers that begin or end
// with punctuation only match where a word character sits on the other
// side of that edge.
func Compile(config domain.Configuration) *Pattern {
	terms := config.Texts()
	if len(terms) == 0 {
		return nil
	}

	escaped := make([]string, len(terms))
	for i, term := range terms {
		escaped[i] = regexp.QuoteMeta(term)
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(escaped, "|") + `)\b`)

	return &Pattern{re: re, terms: terms}
}

// MatchString reports whether s contains any identifier.
func (p *Pattern) MatchString(s string) bool {
	if p == nil {
		return false
	}
	return p.re.MatchString(s)
}

// FindAllIndex returns the byte offsets of every non-overlapping match in
// s, scanning left to right.
func (p *Pattern) FindAllIndex(s string) [][]int {
	if p == nil {
		return nil
	}
	return p.re.FindAllStringIndex(s, -1)
}

// Terms returns the identifier texts the pattern was built from.
func (p *Pattern) Terms() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.terms))
	copy(out, p.terms)
	return out
}

// String returns the regular expression source.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.re.String()
}
