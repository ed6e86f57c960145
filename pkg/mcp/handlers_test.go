package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wcspec/pkg/catalog"
	"github.com/gnana997/wcspec/pkg/mcplog"
)

// --- helpers ---

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Name:    "test",
		Version: "1.0",
		Components: []catalog.Component{
			{
				TagName:     "my-button",
				ClassName:   "MyButton",
				Description: "A clickable button",
				Module:      "src/button.ts",
				Attributes: []catalog.Attribute{
					{Name: "variant", FieldName: "variant", Type: `"primary" | "secondary"`, AllowedValues: []string{"primary", "secondary"}},
				},
				Properties: []catalog.Property{{Name: "variant", Attribute: "variant"}},
				Events:     []catalog.Event{{Name: "press", Type: "CustomEvent<void>"}},
			},
			{
				TagName:     "my-dialog",
				ClassName:   "MyDialog",
				Description: "A modal dialog overlay",
				Module:      "src/dialog.ts",
				Slots:       []catalog.Slot{{Name: "footer"}},
				Events:      []catalog.Event{{Name: "close"}, {Name: "press"}},
			},
		},
		Global: &catalog.GlobalFeatures{
			Events: []catalog.Event{{Name: "theme-change"}},
		},
		Diagnostics: []catalog.Diagnostic{
			{File: "src/dialog.ts", Line: 7, Severity: "warning", Message: "invalid custom element name 'dialog'"},
		},
	}
}

func testServer() *Server {
	cat := testCatalog()
	return NewServer(catalog.NewQueryService(cat, cat.BuildIndex()), nil)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "list_modules":
		handler = s.handleListModules
	case "list_components":
		handler = s.handleListComponents
	case "get_component_details":
		handler = s.handleGetComponentDetails
	case "search_components":
		handler = s.handleSearchComponents
	case "find_by_event":
		handler = s.handleFindByEvent
	case "get_global_features":
		handler = s.handleGetGlobalFeatures
	case "get_diagnostics":
		handler = s.handleGetDiagnostics
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

func decode[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &v))
	return v
}

// --- list_modules ---

func TestHandleListModules(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("list_modules", nil))
	assert.False(t, result.IsError)

	mods := decode[[]catalog.ModuleSummary](t, result)
	require.Len(t, mods, 2)
	assert.Equal(t, "src/button.ts", mods[0].Module)
	assert.Equal(t, []string{"my-button"}, mods[0].Tags)
}

// --- list_components ---

func TestHandleListComponents_NoFilter(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("list_components", nil))
	assert.False(t, result.IsError)

	comps := decode[[]map[string]any](t, result)
	require.Len(t, comps, 2)
	assert.Equal(t, "my-button", comps[0]["tag_name"])
	assert.Equal(t, float64(1), comps[0]["attributes"])
	assert.NotContains(t, comps[0], "properties", "summaries stay compact")
}

func TestHandleListComponents_ByModule(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("list_components", map[string]any{"module": "src/dialog.ts"}))
	comps := decode[[]map[string]any](t, result)
	require.Len(t, comps, 1)
	assert.Equal(t, "my-dialog", comps[0]["tag_name"])
}

func TestHandleListComponents_ByKeyword(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("list_components", map[string]any{"keyword": "modal"}))
	comps := decode[[]map[string]any](t, result)
	require.Len(t, comps, 1)
	assert.Equal(t, "MyDialog", comps[0]["class_name"])
}

func TestHandleListComponents_NoMatchIsEmptyArray(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("list_components", map[string]any{"keyword": "zzz"}))
	assert.Equal(t, "[]", resultJSON(t, result))
}

// --- get_component_details ---

func TestHandleGetComponentDetails(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("get_component_details", map[string]any{
		"names": []any{"my-button", "MyDialog", "unknown"},
	}))
	assert.False(t, result.IsError)

	comps := decode[[]catalog.Component](t, result)
	require.Len(t, comps, 2)
	assert.Equal(t, "my-button", comps[0].TagName)
	assert.Equal(t, []string{"primary", "secondary"}, comps[0].Attributes[0].AllowedValues)
	assert.Equal(t, "my-dialog", comps[1].TagName)
}

func TestHandleGetComponentDetails_MissingNames(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("get_component_details", nil))
	assert.True(t, result.IsError)
}

func TestHandleGetComponentDetails_NotFound(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("get_component_details", map[string]any{
		"names": []any{"x-none"},
	}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "no components found")
}

// --- search_components ---

func TestHandleSearchComponents(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("search_components", map[string]any{"query": "footer"}))
	assert.False(t, result.IsError)

	hits := decode[[]map[string]any](t, result)
	require.Len(t, hits, 1)
	assert.Equal(t, "my-dialog", hits[0]["tag_name"])
	assert.Equal(t, "slot:footer", hits[0]["match"])
}

func TestHandleSearchComponents_MissingQuery(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("search_components", nil))
	assert.True(t, result.IsError)
}

// --- find_by_event ---

func TestHandleFindByEvent(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("find_by_event", map[string]any{"event": "press"}))
	comps := decode[[]map[string]any](t, result)
	require.Len(t, comps, 2)

	result = callTool(t, testServer(), makeRequest("find_by_event", map[string]any{"event": "nothing"}))
	assert.Equal(t, "[]", resultJSON(t, result))

	result = callTool(t, testServer(), makeRequest("find_by_event", nil))
	assert.True(t, result.IsError)
}

// --- global features and diagnostics ---

func TestHandleGetGlobalFeatures(t *testing.T) {
	result := callTool(t, testServer(), makeRequest("get_global_features", nil))
	g := decode[catalog.GlobalFeatures](t, result)
	require.Len(t, g.Events, 1)
	assert.Equal(t, "theme-change", g.Events[0].Name)

	cat := testCatalog()
	cat.Global = nil
	s := NewServer(catalog.NewQueryService(cat, cat.BuildIndex()), nil)
	assert.Equal(t, "{}", resultJSON(t, callTool(t, s, makeRequest("get_global_features", nil))))
}

func TestHandleGetDiagnostics(t *testing.T) {
	s := testServer()
	all := decode[[]catalog.Diagnostic](t, callTool(t, s, makeRequest("get_diagnostics", nil)))
	require.Len(t, all, 1)

	result := callTool(t, s, makeRequest("get_diagnostics", map[string]any{"file": "button.ts"}))
	assert.Equal(t, "[]", resultJSON(t, result))
}

// --- catalog swap and logging ---

func TestSetQueryService(t *testing.T) {
	s := testServer()
	cat := &catalog.Catalog{Name: "next", Version: "2", Components: []catalog.Component{{TagName: "new-el"}}}
	s.SetQueryService(catalog.NewQueryService(cat, cat.BuildIndex()))

	comps := decode[[]map[string]any](t, callTool(t, s, makeRequest("list_components", nil)))
	require.Len(t, comps, 1)
	assert.Equal(t, "new-el", comps[0]["tag_name"])
}

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	logger, err := mcplog.NewLogger(path)
	require.NoError(t, err)

	cat := testCatalog()
	s := NewServer(catalog.NewQueryService(cat, cat.BuildIndex()), logger)

	handler := s.loggingMiddleware()(s.handleListComponents)
	result, err := handler(context.Background(), makeRequest("list_components", map[string]any{"keyword": "button"}))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry mcplog.LogEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "list_components", entry.Tool)
	assert.Equal(t, "test", entry.Catalog)
	assert.Equal(t, "button", entry.Params["keyword"])
	assert.Greater(t, entry.ResponseBytes, 0)
	assert.Nil(t, entry.Error)
}
