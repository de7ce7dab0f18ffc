package annotator

import (
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
)

// AnnotateDocument compiles config and scans regions of doc once. It is
// the one-shot form of a coordinator scan, for static documents.
func AnnotateDocument(doc *dom.Document, config domain.Configuration, regions []Region) ScanStats {
	p := Compile(config)
	if p == nil {
		return ScanStats{}
	}
	return NewScanner(doc).ScanRegions(doc, regions, p, config)
}
