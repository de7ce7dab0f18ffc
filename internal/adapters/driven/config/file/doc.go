// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based identifier configuration with change
//     notification for both in-process writes and external edits
package file
