package domain

import "time"

// Trigger names what caused a scan to be scheduled.
type Trigger string

// Scan triggers.
const (
	TriggerInitial    Trigger = "initial"
	TriggerMutation   Trigger = "mutation"
	TriggerNavigation Trigger = "navigation"
	TriggerConfig     Trigger = "config"
)

// NavigationKind identifies the host signal that reported a completed
// client-side navigation.
type NavigationKind string

// Navigation signal kinds.
const (
	NavigationHistory NavigationKind = "popstate"
	NavigationPjax    NavigationKind = "pjax:end"
	NavigationTurbo   NavigationKind = "turbo:load"
)

// IsValid returns true if the navigation kind is recognised.
func (k NavigationKind) IsValid() bool {
	switch k {
	case NavigationHistory, NavigationPjax, NavigationTurbo:
		return true
	default:
		return false
	}
}

// ScanReport summarises one executed scan pass.
type ScanReport struct {
	ID        string
	Triggers  []Trigger
	StartedAt time.Time
	Duration  time.Duration

	// Runs is the number of eligible text runs collected.
	Runs int

	// Annotated is the number of runs that were replaced with markers.
	Annotated int

	// Markers is the number of markers created.
	Markers int

	// Failures is the number of runs whose annotation failed.
	Failures int
}
