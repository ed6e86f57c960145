package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/wcspec/pkg/catalog"
	"github.com/gnana997/wcspec/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for wcspec, exposing catalog query tools.
type Server struct {
	mcpServer *server.MCPServer
	logger    *mcplog.Logger // nil disables call logging

	mu    sync.RWMutex
	query *catalog.QueryService
}

// NewServer creates a new MCP server backed by the given QueryService. The
// logger is optional.
func NewServer(qs *catalog.QueryService, logger *mcplog.Logger) *Server {
	s := &Server{query: qs, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("wcspec", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listModulesTool(), Handler: s.handleListModules},
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
		server.ServerTool{Tool: getComponentDetailsTool(), Handler: s.handleGetComponentDetails},
		server.ServerTool{Tool: searchComponentsTool(), Handler: s.handleSearchComponents},
		server.ServerTool{Tool: findByEventTool(), Handler: s.handleFindByEvent},
		server.ServerTool{Tool: getGlobalFeaturesTool(), Handler: s.handleGetGlobalFeatures},
		server.ServerTool{Tool: getDiagnosticsTool(), Handler: s.handleGetDiagnostics},
	)

	return s
}

// SetQueryService swaps the catalog served by subsequent tool calls.
func (s *Server) SetQueryService(qs *catalog.QueryService) {
	s.mu.Lock()
	s.query = qs
	s.mu.Unlock()
}

func (s *Server) queryService() *catalog.QueryService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
