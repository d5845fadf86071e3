// Package mcp exposes the diagram workspace to AI agents over the Model
// Context Protocol. Tools go through the coordinator like any other UI
// caller, so they observe the same serialization and validation rules.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/lgmendez/diasync/internal/coordinator"
	"github.com/lgmendez/diasync/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes diagram workspace tools.
type Server struct {
	coord *coordinator.Coordinator
	store *store.Store
	mcp   *server.MCPServer
}

// NewServer creates a new MCP server driving the given coordinator.
func NewServer(coord *coordinator.Coordinator, st *store.Store) *Server {
	s := &Server{
		coord: coord,
		store: st,
	}

	s.mcp = server.NewMCPServer(
		"diasync",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listDiagramsTool, s.handleListDiagrams)
	s.mcp.AddTool(createDiagramTool, s.handleCreateDiagram)
	s.mcp.AddTool(shareDiagramTool, s.handleShareDiagram)
	s.mcp.AddTool(deleteDiagramTool, s.handleDeleteDiagram)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
