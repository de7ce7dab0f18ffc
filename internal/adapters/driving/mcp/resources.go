package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/highlight/internal/adapters/driving/preview"
)

const (
	// uriScheme is the custom URI scheme for highlight resources.
	uriScheme = "highlight://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "config",
		Name:        "config",
		Description: "The viewer and the watched identifiers",
		MIMEType:    "application/json",
	}, s.handleConfigResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "preview",
		Name:        "preview",
		Description: "Sample comment mentioning every configured identifier",
		MIMEType:    "text/plain",
	}, s.handlePreviewResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "identifiers/{text}",
		Name:        "identifier",
		Description: "A single watched identifier and its colour",
		MIMEType:    "application/json",
	}, s.handleIdentifierResource)
}

// handleConfigResource returns the whole configuration.
func (s *Server) handleConfigResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, cfg, err := s.currentConfig()
	if err != nil {
		return nil, fmt.Errorf("getting configuration: %w", err)
	}
	return jsonResult(req.Params.URI, cfg)
}

// handlePreviewResource returns the sample comment used by the preview.
func (s *Server) handlePreviewResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	cfg, err := s.ports.Config.Get()
	if err != nil {
		return nil, fmt.Errorf("getting configuration: %w", err)
	}
	text, ok := preview.SampleText(cfg)
	if !ok {
		text = preview.EmptyMessage
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// handleIdentifierResource returns one watched identifier.
func (s *Server) handleIdentifierResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	text := extractIdentifier(req.Params.URI)
	if text == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	cfg, err := s.ports.Config.Get()
	if err != nil {
		return nil, fmt.Errorf("getting configuration: %w", err)
	}
	id, ok := cfg.Find(text)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, id)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractIdentifier extracts the identifier text from a URI like
// highlight://identifiers/{text}. The text may be percent-encoded.
func extractIdentifier(uri string) string {
	const prefix = uriScheme + "identifiers/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	text, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return text
}
