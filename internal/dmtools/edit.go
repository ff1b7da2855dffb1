package dmtools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"soarmap/internal/project"
)

// AddAttributeTool handles the dm_add_attribute MCP tool.
type AddAttributeTool struct {
	store project.Store
}

// NewAddAttributeTool creates an AddAttributeTool.
func NewAddAttributeTool(store project.Store) *AddAttributeTool {
	return &AddAttributeTool{store: store}
}

// Definition returns the MCP tool definition for dm_add_attribute.
func (t *AddAttributeTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_add_attribute",
		mcp.WithDescription(
			"Add a new attribute to a datamap vertex: creates a fresh vertex of the given "+
				"kind and a named edge to it from the parent. Sibling names must be unique; "+
				"use dm_link_attribute to point a second name at an existing vertex.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("parent_id",
			mcp.Required(),
			mcp.Description("ID of the identifier vertex to attach to (the datamap root is usually \"1\")"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Attribute name (letters, digits, '-', '_', '*'; no dots)"),
		),
		mcp.WithString("kind",
			mcp.Description("Vertex kind: identifier, enumeration, integer, float, string (default), foreign"),
		),
		mcp.WithString("choices",
			mcp.Description("Comma-separated value list; required when kind is enumeration"),
		),
		mcp.WithNumber("min",
			mcp.Description("Lower bound for integer/float kinds"),
		),
		mcp.WithNumber("max",
			mcp.Description("Upper bound for integer/float kinds"),
		),
		mcp.WithString("comment",
			mcp.Description("Optional comment stored on the new edge"),
		),
	)
}

// Handle processes the dm_add_attribute tool call.
func (t *AddAttributeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	res, err := p.Editor().AddAttribute(req.GetString("parent_id", ""), attributeSpec(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add attribute: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Attribute ^%s added under vertex %s (new vertex %s).",
		res.EdgeName, res.ParentID, res.VertexID,
	)), nil
}

// ─── LinkAttributeTool ──────────────────────────────────────────────────────

// LinkAttributeTool handles the dm_link_attribute MCP tool.
type LinkAttributeTool struct {
	store project.Store
}

// NewLinkAttributeTool creates a LinkAttributeTool.
func NewLinkAttributeTool(store project.Store) *LinkAttributeTool {
	return &LinkAttributeTool{store: store}
}

// Definition returns the MCP tool definition for dm_link_attribute.
func (t *LinkAttributeTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_link_attribute",
		mcp.WithDescription(
			"Add an edge from a parent vertex to an EXISTING vertex, sharing its whole "+
				"substructure. This is how shared structure (links) is expressed; the target "+
				"keeps its original owner.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("parent_id",
			mcp.Required(),
			mcp.Description("ID of the identifier vertex to attach to"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Attribute name for the new edge"),
		),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("ID of the existing vertex to link to"),
		),
	)
}

// Handle processes the dm_link_attribute tool call.
func (t *LinkAttributeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	res, err := p.Editor().AddLinkedAttribute(
		req.GetString("parent_id", ""),
		req.GetString("name", ""),
		req.GetString("target_id", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to link attribute: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Attribute ^%s on vertex %s now links to vertex %s.",
		res.EdgeName, res.ParentID, res.VertexID,
	)), nil
}

// ─── RenameAttributeTool ────────────────────────────────────────────────────

// RenameAttributeTool handles the dm_rename_attribute MCP tool.
type RenameAttributeTool struct {
	store project.Store
}

// NewRenameAttributeTool creates a RenameAttributeTool.
func NewRenameAttributeTool(store project.Store) *RenameAttributeTool {
	return &RenameAttributeTool{store: store}
}

// Definition returns the MCP tool definition for dm_rename_attribute.
func (t *RenameAttributeTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_rename_attribute",
		mcp.WithDescription(
			"Rename an existing attribute edge. The target vertex and its structure are untouched.",
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
			mcp.Description("Current attribute name"),
		),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("Edge target vertex ID (disambiguates linked edges sharing a name)"),
		),
		mcp.WithString("new_name",
			mcp.Required(),
			mcp.Description("New attribute name"),
		),
	)
}

// Handle processes the dm_rename_attribute tool call.
func (t *RenameAttributeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	name := req.GetString("name", "")
	newName := req.GetString("new_name", "")
	err := p.Editor().RenameAttribute(
		req.GetString("parent_id", ""),
		name,
		req.GetString("target_id", ""),
		newName,
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to rename attribute: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Attribute ^%s renamed to ^%s.", name, newName)), nil
}

// ─── CommentTool ────────────────────────────────────────────────────────────

// CommentTool handles the dm_edit_comment MCP tool.
type CommentTool struct {
	store project.Store
}

// NewCommentTool creates a CommentTool.
func NewCommentTool(store project.Store) *CommentTool {
	return &CommentTool{store: store}
}

// Definition returns the MCP tool definition for dm_edit_comment.
func (t *CommentTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_edit_comment",
		mcp.WithDescription(
			"Set or clear the comment on an attribute edge. Pass an empty comment to clear it.",
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
		mcp.WithString("comment",
			mcp.Description("New comment text (empty clears the comment)"),
		),
	)
}

// Handle processes the dm_edit_comment tool call.
func (t *CommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	comment := req.GetString("comment", "")
	err := p.Editor().EditComment(
		req.GetString("parent_id", ""),
		req.GetString("name", ""),
		req.GetString("target_id", ""),
		comment,
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to edit comment: %v", err)), nil
	}

	if comment == "" {
		return mcp.NewToolResultText("Comment cleared."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Comment set: %q", comment)), nil
}

// ─── ChangeTypeTool ─────────────────────────────────────────────────────────

// ChangeTypeTool handles the dm_change_type MCP tool.
type ChangeTypeTool struct {
	store project.Store
}

// NewChangeTypeTool creates a ChangeTypeTool.
func NewChangeTypeTool(store project.Store) *ChangeTypeTool {
	return &ChangeTypeTool{store: store}
}

// Definition returns the MCP tool definition for dm_change_type.
func (t *ChangeTypeTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_change_type",
		mcp.WithDescription(
			"Change the kind of an attribute's target vertex. WARNING: changing an "+
				"identifier to any other kind deletes its entire substructure first.",
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
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("New vertex kind: identifier, enumeration, integer, float, string, foreign"),
		),
		mcp.WithString("choices",
			mcp.Description("Comma-separated value list; required when kind is enumeration"),
		),
		mcp.WithNumber("min",
			mcp.Description("Lower bound for integer/float kinds"),
		),
		mcp.WithNumber("max",
			mcp.Description("Upper bound for integer/float kinds"),
		),
	)
}

// Handle processes the dm_change_type tool call.
func (t *ChangeTypeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	spec := attributeSpec(req)
	err := p.Editor().ChangeType(
		req.GetString("parent_id", ""),
		req.GetString("name", ""),
		req.GetString("target_id", ""),
		spec,
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to change type: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Attribute ^%s target is now %s.", req.GetString("name", ""), spec.Kind,
	)), nil
}
