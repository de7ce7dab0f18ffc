// Package page resolves the viewer from metadata in the page being annotated.
package page

import (
	"context"

	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/dom"
)

// Ensure Resolver implements the interface.
var _ driven.ViewerResolver = (*Resolver)(nil)

// Resolver reads the signed-in login from a document's metadata.
type Resolver struct {
	doc *dom.Document
}

// NewResolver creates a resolver for doc.
func NewResolver(doc *dom.Document) *Resolver {
	return &Resolver{doc: doc}
}

// ResolveViewer returns the login found in the page, or "".
func (r *Resolver) ResolveViewer(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return dom.ViewerFromPage(r.doc), nil
}
