package driven

import "context"

// ViewerResolver discovers the current user's name from the host
// environment (page metadata, an API account).
type ViewerResolver interface {
	// ResolveViewer returns the viewer's login, or "" when it cannot be
	// determined.
	ResolveViewer(ctx context.Context) (string, error)
}
