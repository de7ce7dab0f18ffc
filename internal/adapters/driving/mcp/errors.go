// Package mcp provides an MCP (Model Context Protocol) server adapter for
// highlight. It lets AI assistants highlight text and pages and manage the
// watched identifiers.
package mcp

import "errors"

// ErrMissingConfigService is returned when the config service is not provided.
var ErrMissingConfigService = errors.New("mcp: config service is required")
