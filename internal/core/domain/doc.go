// Package domain defines the core entities for highlight.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Identifier: A watched name and its marker colour
//   - ViewerIdentity: The current user's own name
//   - Configuration: Viewer plus watchlist, as read from the store
//   - Marker / Segment: An annotated span and the pieces of a text run
//   - ChangeSet: Store change notifications
//   - ScanReport: Outcome of one scan pass
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
