package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listDiagramsTool defines the list_diagrams MCP tool.
var listDiagramsTool = mcp.NewTool("list_diagrams",
	mcp.WithDescription("List all diagrams the configured user owns or is shared into, with owners and participants."),
)

// createDiagramTool defines the create_diagram MCP tool.
var createDiagramTool = mcp.NewTool("create_diagram",
	mcp.WithDescription("Create a new diagram owned by the configured user."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Diagram name (3-100 characters)"),
	),
)

// shareDiagramTool defines the share_diagram MCP tool.
var shareDiagramTool = mcp.NewTool("share_diagram",
	mcp.WithDescription("Share a diagram with another user by email."),
	mcp.WithString("diagram_id",
		mcp.Required(),
		mcp.Description("ID of the diagram to share"),
	),
	mcp.WithString("email",
		mcp.Required(),
		mcp.Description("Email of the user to share with"),
	),
)

// deleteDiagramTool defines the delete_diagram MCP tool.
var deleteDiagramTool = mcp.NewTool("delete_diagram",
	mcp.WithDescription("Delete a diagram owned by the configured user. This cannot be undone."),
	mcp.WithString("diagram_id",
		mcp.Required(),
		mcp.Description("ID of the diagram to delete"),
	),
)
