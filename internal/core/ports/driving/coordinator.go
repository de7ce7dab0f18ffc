package driving

import (
	"context"

	"github.com/custodia-labs/highlight/internal/core/domain"
)

// CoordinatorState is the scheduling state of a ChangeCoordinator.
type CoordinatorState int

// Coordinator states.
const (
	// StateIdle means no scan is scheduled.
	StateIdle CoordinatorState = iota

	// StateScanPending means one scan is scheduled and further triggers
	// are absorbed by it.
	StateScanPending
)

// String returns the state name.
func (s CoordinatorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanPending:
		return "scan_pending"
	default:
		return "unknown"
	}
}

// ChangeCoordinator keeps a live document annotated as it and the
// identifier configuration change.
type ChangeCoordinator interface {
	// Start loads configuration, begins observing the document and the
	// store, and schedules the initial scan.
	Start(ctx context.Context) error

	// Stop detaches from the document and the store.
	Stop()

	// NotifyNavigation reports a completed client-side navigation.
	NotifyNavigation(kind domain.NavigationKind)

	// NotifyConfigChange reports a store change. Markers are removed
	// before the next scan is scheduled.
	NotifyConfigChange(changes domain.ChangeSet)

	// State returns the current scheduling state.
	State() CoordinatorState

	// Configuration returns the cached configuration.
	Configuration() domain.Configuration
}
