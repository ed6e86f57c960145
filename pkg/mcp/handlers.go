package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/wcspec/pkg/catalog"
)

// componentSummary is the compact form returned by list tools.
type componentSummary struct {
	TagName     string `json:"tag_name"`
	ClassName   string `json:"class_name,omitempty"`
	Description string `json:"description,omitempty"`
	Module      string `json:"module,omitempty"`
	Attributes  int    `json:"attributes"`
	Events      int    `json:"events"`
}

type searchResult struct {
	componentSummary
	Match string `json:"match"`
}

func summarize(c *catalog.Component) componentSummary {
	return componentSummary{
		TagName:     c.TagName,
		ClassName:   c.ClassName,
		Description: c.Description,
		Module:      c.Module,
		Attributes:  len(c.Attributes),
		Events:      len(c.Events),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListModules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.queryService().ListModules())
}

func (s *Server) handleListComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	comps := s.queryService().ListComponents(req.GetString("module", ""), req.GetString("keyword", ""))
	out := make([]componentSummary, 0, len(comps))
	for i := range comps {
		out = append(out, summarize(&comps[i]))
	}
	return jsonResult(out)
}

func (s *Server) handleGetComponentDetails(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := req.GetStringSlice("names", nil)
	if len(names) == 0 {
		return mcp.NewToolResultError("names is required and must be a non-empty array of tag or class names"), nil
	}

	comps := s.queryService().GetComponentsByNames(names)
	if len(comps) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no components found for %v", names)), nil
	}
	return jsonResult(comps)
}

func (s *Server) handleSearchComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	results := s.queryService().SearchComponents(query)
	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		out = append(out, searchResult{componentSummary: summarize(r.Component), Match: r.MatchReason})
	}
	return jsonResult(out)
}

func (s *Server) handleFindByEvent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	event, err := req.RequireString("event")
	if err != nil || event == "" {
		return mcp.NewToolResultError("event is required"), nil
	}

	comps := s.queryService().FindByEvent(event)
	out := make([]componentSummary, 0, len(comps))
	for _, c := range comps {
		out = append(out, summarize(c))
	}
	return jsonResult(out)
}

func (s *Server) handleGetGlobalFeatures(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g := s.queryService().Catalog.Global
	if g == nil {
		g = &catalog.GlobalFeatures{}
	}
	return jsonResult(g)
}

func (s *Server) handleGetDiagnostics(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diags := s.queryService().GetDiagnostics(req.GetString("file", ""))
	if diags == nil {
		diags = []catalog.Diagnostic{}
	}
	return jsonResult(diags)
}
