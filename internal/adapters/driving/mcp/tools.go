package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/net/html"

	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
)

// HighlightTextInput is the input schema for the highlight_text tool.
type HighlightTextInput struct {
	Text string `json:"text" jsonschema:"the text to search for the viewer and watched identifiers"`
}

// HighlightPageInput is the input schema for the highlight_page tool.
type HighlightPageInput struct {
	Ref string `json:"ref" jsonschema:"path or http(s) URL of an HTML or Markdown page"`
}

// MarkerOutput is one highlighted occurrence.
type MarkerOutput struct {
	Text       string `json:"text"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Self       bool   `json:"self"`
}

// HighlightOutput is the output schema of the highlight tools.
type HighlightOutput struct {
	Markers []MarkerOutput `json:"markers"`
	Count   int            `json:"count"`
	HTML    string         `json:"html,omitempty"`
}

// IdentifierInput is the input schema of the identifier editing tools.
type IdentifierInput struct {
	Text  string `json:"text" jsonschema:"the identifier text"`
	Color string `json:"color,omitempty" jsonschema:"background colour as #rgb or #rrggbb"`
}

// ConfigOutput is the configuration returned after an edit.
type ConfigOutput struct {
	Viewer    domain.ViewerIdentity `json:"viewer"`
	Watchlist []domain.Identifier   `json:"watchlist"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "highlight_text",
		Description: "Find the viewer's name and watched identifiers in a piece of text",
	}, s.handleHighlightText)

	if s.ports.Loader != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "highlight_page",
			Description: "Annotate an HTML or Markdown page and list the highlighted occurrences",
		}, s.handleHighlightPage)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_identifier",
		Description: "Watch a new identifier",
	}, s.handleAddIdentifier)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_identifier",
		Description: "Stop watching an identifier",
	}, s.handleRemoveIdentifier)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_viewer",
		Description: "Set the viewer's own name and, optionally, its colour",
	}, s.handleSetViewer)
}

func (s *Server) handleHighlightText(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input HighlightTextInput,
) (*mcp.CallToolResult, HighlightOutput, error) {
	cfg, err := s.ports.Config.Get()
	if err != nil {
		return nil, HighlightOutput{}, err
	}

	output := HighlightOutput{Markers: []MarkerOutput{}}
	for _, seg := range annotator.Split(input.Text, annotator.Compile(cfg), cfg) {
		if seg.IsMarker() {
			output.Markers = append(output.Markers, markerOutput(seg.Marker))
		}
	}
	output.Count = len(output.Markers)
	return nil, output, nil
}

func (s *Server) handleHighlightPage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HighlightPageInput,
) (*mcp.CallToolResult, HighlightOutput, error) {
	cfg, err := s.ports.Config.Get()
	if err != nil {
		return nil, HighlightOutput{}, err
	}
	page, err := s.ports.Loader.Load(ctx, input.Ref)
	if err != nil {
		return nil, HighlightOutput{}, err
	}
	annotator.AnnotateDocument(page.Doc, cfg, s.ports.Regions)

	output := HighlightOutput{Markers: []MarkerOutput{}, HTML: page.Doc.String()}
	for _, n := range markerNodes(page.Doc) {
		bg, fg := annotator.MarkerStyle(n)
		output.Markers = append(output.Markers, MarkerOutput{
			Text:       dom.TextContent(n),
			Background: bg,
			Foreground: fg,
			Self:       dom.HasClass(n, domain.SelfClass),
		})
	}
	output.Count = len(output.Markers)
	return nil, output, nil
}

func (s *Server) handleAddIdentifier(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input IdentifierInput,
) (*mcp.CallToolResult, ConfigOutput, error) {
	if err := s.ports.Config.AddIdentifier(input.Text, input.Color); err != nil {
		return nil, ConfigOutput{}, err
	}
	return s.currentConfig()
}

func (s *Server) handleRemoveIdentifier(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input IdentifierInput,
) (*mcp.CallToolResult, ConfigOutput, error) {
	if err := s.ports.Config.RemoveIdentifier(input.Text); err != nil {
		return nil, ConfigOutput{}, err
	}
	return s.currentConfig()
}

func (s *Server) handleSetViewer(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input IdentifierInput,
) (*mcp.CallToolResult, ConfigOutput, error) {
	if err := s.ports.Config.SetViewer(input.Text, input.Color); err != nil {
		return nil, ConfigOutput{}, err
	}
	return s.currentConfig()
}

func (s *Server) currentConfig() (*mcp.CallToolResult, ConfigOutput, error) {
	cfg, err := s.ports.Config.Get()
	if err != nil {
		return nil, ConfigOutput{}, err
	}
	list := cfg.Watchlist
	if list == nil {
		list = []domain.Identifier{}
	}
	return nil, ConfigOutput{Viewer: cfg.Viewer, Watchlist: list}, nil
}

func markerOutput(m *domain.Marker) MarkerOutput {
	return MarkerOutput{
		Text:       m.Text,
		Background: m.Background,
		Foreground: m.Foreground,
		Self:       m.Self,
	}
}

// markerNodes returns the marker spans of doc in document order.
func markerNodes(doc *dom.Document) []*html.Node {
	nodes, err := doc.Find("//span[contains(concat(' ', normalize-space(@class), ' '), ' " + domain.MarkerClass + " ')]")
	if err != nil {
		return nil
	}
	return nodes
}
