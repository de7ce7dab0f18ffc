package annotator

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
	"github.com/custodia-labs/highlight/internal/logger"
)

// ScanStats counts the work done by one or more Scan calls.
type ScanStats struct {
	Roots     int
	Runs      int
	Annotated int
	Markers   int
	Failures  int
}

// Add accumulates other into s.
func (s *ScanStats) Add(other ScanStats) {
	s.Roots += other.Roots
	s.Runs += other.Runs
	s.Annotated += other.Annotated
	s.Markers += other.Markers
	s.Failures += other.Failures
}

// Scanner enumerates eligible text runs under a root and annotates them.
type Scanner struct {
	annotator *TextAnnotator
}

// NewScanner creates a scanner that mutates through m.
func NewScanner(m Mutator) *Scanner {
	return &Scanner{annotator: NewTextAnnotator(m)}
}

// Scan annotates every eligible text run under root. A nil pattern is a
// no-op. Candidate runs are collected into a snapshot before any of them
// is replaced, and a failure on one run does not stop the others.
func (s *Scanner) Scan(root *html.Node, p *Pattern, config domain.Configuration) ScanStats {
	var stats ScanStats
	if p == nil || root == nil {
		return stats
	}
	if !IsEligible(root) || InsideMarker(root, nil) {
		return stats
	}
	stats.Roots = 1

	runs := collectRuns(root)
	stats.Runs = len(runs)

	for _, run := range runs {
		n, err := s.annotate(run, p, config)
		if err != nil {
			stats.Failures++
			logger.Error("highlighting text node: %v", err)
			continue
		}
		if n > 0 {
			stats.Annotated++
			stats.Markers += n
		}
	}
	return stats
}

// ScanRegions runs Scan over every node matched by each region, in region
// order. Nodes reachable through several regions are annotated once:
// their runs are already inside markers the second time round.
func (s *Scanner) ScanRegions(doc *dom.Document, regions []Region, p *Pattern, config domain.Configuration) ScanStats {
	var stats ScanStats
	if p == nil || doc == nil {
		return stats
	}
	for _, region := range regions {
		for _, root := range doc.QueryAll(region.expr) {
			stats.Add(s.Scan(root, p, config))
		}
	}
	return stats
}

func (s *Scanner) annotate(run *html.Node, p *Pattern, config domain.Configuration) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("panic: %v", r)
		}
	}()
	return s.annotator.Annotate(run, p, config)
}

// collectRuns returns the non-blank text runs under root whose containers
// are all eligible, skipping whole ineligible subtrees.
func collectRuns(root *html.Node) []*html.Node {
	var runs []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if strings.TrimSpace(c.Data) == "" {
					continue
				}
				if !IsEligible(c.Parent) {
					continue
				}
				runs = append(runs, c)
			case html.ElementNode:
				if IsEligible(c) {
					walk(c)
				}
			case html.DocumentNode:
				walk(c)
			}
		}
	}
	walk(root)
	return runs
}
