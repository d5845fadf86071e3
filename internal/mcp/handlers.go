package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lgmendez/diasync/internal/diagram"
)

// handleListDiagrams refreshes from the backend and formats the store's
// collection.
func (s *Server) handleListDiagrams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.coord.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	diagrams := s.store.List()
	if len(diagrams) == 0 {
		return mcp.NewToolResultText("No diagrams found. Use create_diagram to make one."), nil
	}

	return mcp.NewToolResultText(formatDiagrams(diagrams)), nil
}

// handleCreateDiagram creates a diagram through the coordinator; the name
// is validated client-side before any network call.
func (s *Server) handleCreateDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}

	created, err := s.coord.Create(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created diagram %q with id %s.", created.Name, created.ID)), nil
}

// handleShareDiagram adds one participant to an existing diagram.
func (s *Server) handleShareDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diagramID, err := request.RequireString("diagram_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: diagram_id"), nil
	}
	email, err := request.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: email"), nil
	}

	d, ok := s.store.Get(diagramID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"unknown diagram %q; run list_diagrams first", diagramID,
		)), nil
	}

	updated, err := s.coord.Update(ctx, diagramID, d.Name, []string{email})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("share failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Shared %q with %s (%d participants).", updated.Name, email, len(updated.SharedParticipants),
	)), nil
}

// handleDeleteDiagram removes a diagram through the coordinator.
func (s *Server) handleDeleteDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diagramID, err := request.RequireString("diagram_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: diagram_id"), nil
	}

	if err := s.coord.Remove(ctx, diagramID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted diagram %s.", diagramID)), nil
}

// formatDiagrams converts the collection into a text format suited to AI
// agent consumption.
func formatDiagrams(diagrams []diagram.Diagram) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d diagram(s):\n", len(diagrams)))

	for _, d := range diagrams {
		sb.WriteString(fmt.Sprintf("\n%s (id %s)\n", d.Name, d.ID))
		sb.WriteString(fmt.Sprintf("  owner: %s %s <%s>\n", d.Owner.FirstName, d.Owner.LastName, d.Owner.Email))
		if len(d.SharedParticipants) > 0 {
			emails := make([]string, 0, len(d.SharedParticipants))
			for _, p := range d.SharedParticipants {
				emails = append(emails, p.Email)
			}
			sb.WriteString(fmt.Sprintf("  shared with: %s\n", strings.Join(emails, ", ")))
		}
		sb.WriteString(fmt.Sprintf("  updated: %s\n", d.UpdatedAt.Format("2006-01-02 15:04:05 MST")))
	}

	return sb.String()
}
