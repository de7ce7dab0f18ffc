package mcp

import (
	"github.com/custodia-labs/highlight/internal/adapters/driven/source"
	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server needs.
type Ports struct {
	// Config reads and edits the identifier configuration.
	Config driving.ConfigService

	// Loader fetches pages for the highlight_page tool. Optional; without
	// it the tool is not registered.
	Loader *source.Loader

	// Regions are the content roots annotated by highlight_page.
	// Defaults to annotator.GitHubRegions().
	Regions []annotator.Region
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Config == nil {
		return ErrMissingConfigService
	}
	return nil
}
