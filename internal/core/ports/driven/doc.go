// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ConfigStore: Identifier configuration with change subscription
//   - EventLoop: Single-threaded task and frame scheduling
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ViewerResolver: Detects the viewer when none is configured.
//     Without it, only watched identifiers are highlighted until a
//     viewer is set.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
