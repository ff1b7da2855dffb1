// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools and resources that depend on abstractions.
// No datamap logic lives here — only wiring.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"soarmap/internal/dmtools"
	"soarmap/internal/project"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DatamapResourceURI addresses the datamap summary resource.
const DatamapResourceURI = "soarmap://datamap"

// New creates and configures the MCP server with all tools and resources
// registered. defaultProject is the project directory the datamap resource
// reads from; tools name their project per call.
func New(defaultProject string) *server.MCPServer {
	store := project.NewFileStore()

	s := server.NewMCPServer(
		"soarmap",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register project tools ---

	newProject := dmtools.NewNewProjectTool(store)
	s.AddTool(newProject.Definition(), newProject.Handle)

	// --- Register datamap editing tools ---

	addAttr := dmtools.NewAddAttributeTool(store)
	s.AddTool(addAttr.Definition(), addAttr.Handle)

	linkAttr := dmtools.NewLinkAttributeTool(store)
	s.AddTool(linkAttr.Definition(), linkAttr.Handle)

	renameAttr := dmtools.NewRenameAttributeTool(store)
	s.AddTool(renameAttr.Definition(), renameAttr.Handle)

	comment := dmtools.NewCommentTool(store)
	s.AddTool(comment.Definition(), comment.Handle)

	changeType := dmtools.NewChangeTypeTool(store)
	s.AddTool(changeType.Definition(), changeType.Handle)

	deleteAttr := dmtools.NewDeleteAttributeTool(store)
	s.AddTool(deleteAttr.Definition(), deleteAttr.Handle)

	unlinkAttr := dmtools.NewUnlinkAttributeTool(store)
	s.AddTool(unlinkAttr.Definition(), unlinkAttr.Handle)

	// --- Register query tools ---

	inspect := dmtools.NewInspectTool(store)
	s.AddTool(inspect.Definition(), inspect.Handle)

	validateTool := dmtools.NewValidateTool(store)
	s.AddTool(validateTool.Definition(), validateTool.Handle)

	suggest := dmtools.NewSuggestTool(store)
	s.AddTool(suggest.Definition(), suggest.Handle)

	searchTool := dmtools.NewSearchTool(store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	// --- Register resources ---

	res := &datamapResource{store: store, path: defaultProject}
	s.AddResource(res.Definition(), res.Handle)

	return s
}

// ServeStdio runs the server over stdio until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// ─── Datamap resource ────────────────────────────────────────────────────────

// datamapResource exposes a read-only summary of the default project's
// datamap: vertex counts by kind and the root's attributes.
type datamapResource struct {
	store project.Store
	path  string
}

// Definition returns the MCP resource definition for the datamap summary.
func (r *datamapResource) Definition() mcp.Resource {
	return mcp.NewResource(
		DatamapResourceURI,
		"Soar Datamap",
		mcp.WithResourceDescription("Summary of the project's datamap: vertex counts and top-level attributes"),
		mcp.WithMIMEType("application/json"),
	)
}

// Handle returns the datamap summary as JSON.
func (r *datamapResource) Handle(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := project.Open(r.store, r.path)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	g := p.Doc.Datamap
	summary := struct {
		Project    string         `json:"project"`
		RootID     string         `json:"rootId"`
		Vertices   int            `json:"vertices"`
		KindCounts map[string]int `json:"kindCounts"`
		RootAttrs  []string       `json:"rootAttributes"`
	}{
		Project:    p.Doc.Name,
		RootID:     g.RootID,
		Vertices:   len(g.Vertices),
		KindCounts: map[string]int{},
	}
	for _, v := range g.Vertices {
		summary.KindCounts[string(v.Kind)]++
	}
	for _, e := range g.BuildIndex()[g.RootID].Edges {
		summary.RootAttrs = append(summary.RootAttrs, e.Name)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling datamap summary: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}

// serverInstructions returns the system instructions that tell the AI how to
// use the datamap tools effectively.
func serverInstructions() string {
	return `You have access to soarmap, a Soar datamap manager.

## What is a datamap?
A datamap is the schema of a Soar agent's working memory: a typed graph
rooted at the state. Identifier vertices carry named attribute edges to
other vertices; leaf vertices are typed (enumeration, integer, float,
string, foreign). Rules are validated against this schema.

## Editing workflow
- dm_new_project scaffolds a project with the standard state attributes.
- dm_inspect shows a vertex, its edges and their link/cycle classification.
  Start at the root (omit vertex_id) and walk down by target IDs.
- dm_add_attribute creates new structure; sibling names must be unique.
- dm_link_attribute points a second edge at EXISTING structure (shared
  substructure). The same name may appear twice on one parent this way.
- dm_delete_attribute removes an attribute and its whole substructure.
  It refuses shared targets; follow its hint to dm_unlink_attribute, or
  pass force=true only when the user explicitly wants dangling references.
- dm_change_type retypes a vertex. Changing an identifier to any other
  kind deletes its substructure — warn the user first.

## Validation workflow
- dm_validate checks rule text against the datamap: unknown attribute
  paths and illegal enumeration values are errors with exact positions.
- When validation reports an unknown attribute, use dm_suggest to find
  near-miss names before assuming the datamap needs a new attribute.
- dm_search finds attributes by name or comment text when you know what
  something is called but not where it lives.

Every edit persists immediately; there is no separate save step.`
}
