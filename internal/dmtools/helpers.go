// Package dmtools provides the MCP tool handlers for datamap editing and
// rule validation.
//
// Each tool handler follows the same pattern:
// - A struct with dependencies (project.Store) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Every tool takes a `project` argument naming the project directory (or the
// document file itself) and loads the document fresh per call, so the server
// holds no cross-call graph state.
package dmtools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"soarmap/internal/datamap"
	"soarmap/internal/editor"
	"soarmap/internal/project"
)

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// floatArg extracts an optional float argument; nil when absent.
func floatArg(req mcp.CallToolRequest, key string) *float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// openProject loads the project named by the request's `project` argument.
// The second return value is a ready-to-return tool error when loading fails.
func openProject(store project.Store, req mcp.CallToolRequest) (*project.Project, *mcp.CallToolResult) {
	path := req.GetString("project", "")
	if path == "" {
		return nil, mcp.NewToolResultError("'project' is required")
	}
	p, err := project.Open(store, path)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to open project: %v", err))
	}
	return p, nil
}

// splitChoices parses a comma-separated enumeration choice list.
func splitChoices(raw string) []string {
	var choices []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			choices = append(choices, c)
		}
	}
	return choices
}

// kindArg extracts the vertex kind, defaulting to string.
func kindArg(req mcp.CallToolRequest) datamap.VertexKind {
	return datamap.VertexKind(req.GetString("kind", string(datamap.KindString)))
}

// attributeSpec builds an editor.AttributeSpec from the request's shared
// attribute arguments (name, kind, choices, min, max, comment).
func attributeSpec(req mcp.CallToolRequest) editor.AttributeSpec {
	return editor.AttributeSpec{
		Name:    req.GetString("name", ""),
		Kind:    kindArg(req),
		Choices: splitChoices(req.GetString("choices", "")),
		Min:     floatArg(req, "min"),
		Max:     floatArg(req, "max"),
		Comment: req.GetString("comment", ""),
	}
}
