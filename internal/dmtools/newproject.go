package dmtools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"soarmap/internal/project"
)

// NewProjectTool handles the dm_new_project MCP tool.
type NewProjectTool struct {
	store project.Store
}

// NewNewProjectTool creates a NewProjectTool with the given project store.
func NewNewProjectTool(store project.Store) *NewProjectTool {
	return &NewProjectTool{store: store}
}

// Definition returns the MCP tool definition for dm_new_project.
func (t *NewProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_new_project",
		mcp.WithDescription(
			"Create a new Soar project: a datamap document pre-populated with the standard "+
				"state attributes (superstate, type, name, io, operator, epmem, smem, top-state) "+
				"and starter .soar sources under src/.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Directory to create the project in"),
		),
		mcp.WithString("name",
			mcp.Description("Project name stored in the document (default: directory basename)"),
		),
	)
}

// Handle processes the dm_new_project tool call.
func (t *NewProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := req.GetString("project", "")
	if dir == "" {
		return mcp.NewToolResultError("'project' is required"), nil
	}

	p, err := project.NewProject(t.store, dir, req.GetString("name", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create project: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Project %q created.\nDocument: %s\nSources: %s/%s\nDatamap root: %s",
		p.Doc.Name, p.Path, p.Dir(), project.SourceDir, p.Doc.Datamap.RootID,
	)), nil
}
