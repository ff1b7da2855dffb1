package dmtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"soarmap/internal/editor"
	"soarmap/internal/project"
)

// DeleteAttributeTool handles the dm_delete_attribute MCP tool.
type DeleteAttributeTool struct {
	store project.Store
}

// NewDeleteAttributeTool creates a DeleteAttributeTool.
func NewDeleteAttributeTool(store project.Store) *DeleteAttributeTool {
	return &DeleteAttributeTool{store: store}
}

// Definition returns the MCP tool definition for dm_delete_attribute.
func (t *DeleteAttributeTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_delete_attribute",
		mcp.WithDescription(
			"Delete an attribute edge and its target vertex recursively. By default the "+
				"delete is refused when the target is shared (other edges point at it) — "+
				"use dm_unlink_attribute for those, or pass force=true to delete anyway "+
				"and leave the other references dangling.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("parent_id",
			mcp.Required(),
			mcp.Description("ID of the vertex owning the edge"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Attribute name"),
		),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("Edge target vertex ID"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Delete even when the target has other inbound edges (default false)"),
		),
	)
}

// Handle processes the dm_delete_attribute tool call.
func (t *DeleteAttributeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	parentID := req.GetString("parent_id", "")
	name := req.GetString("name", "")
	targetID := req.GetString("target_id", "")

	var err error
	if boolArg(req, "force", false) {
		err = p.Editor().DeleteAttribute(parentID, name, targetID)
	} else {
		err = p.Editor().DeleteAttributeSafe(parentID, name, targetID)
	}
	if err != nil {
		if errors.Is(err, editor.ErrSharedTarget) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"refused: %v. Use dm_unlink_attribute to remove only this edge, or force=true to delete anyway.", err,
			)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete attribute: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Attribute ^%s and its substructure deleted from vertex %s.", name, parentID,
	)), nil
}

// ─── UnlinkAttributeTool ────────────────────────────────────────────────────

// UnlinkAttributeTool handles the dm_unlink_attribute MCP tool.
type UnlinkAttributeTool struct {
	store project.Store
}

// NewUnlinkAttributeTool creates an UnlinkAttributeTool.
func NewUnlinkAttributeTool(store project.Store) *UnlinkAttributeTool {
	return &UnlinkAttributeTool{store: store}
}

// Definition returns the MCP tool definition for dm_unlink_attribute.
func (t *UnlinkAttributeTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_unlink_attribute",
		mcp.WithDescription(
			"Remove a single attribute edge without touching its target vertex. "+
				"The safe way to drop a linked attribute: every other reference to the "+
				"shared structure stays intact.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("parent_id",
			mcp.Required(),
			mcp.Description("ID of the vertex owning the edge"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Attribute name"),
		),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("Edge target vertex ID"),
		),
	)
}

// Handle processes the dm_unlink_attribute tool call.
func (t *UnlinkAttributeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	name := req.GetString("name", "")
	targetID := req.GetString("target_id", "")
	err := p.Editor().RemoveLinkedAttribute(req.GetString("parent_id", ""), name, targetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to unlink attribute: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Edge ^%s removed; vertex %s is untouched.", name, targetID,
	)), nil
}
