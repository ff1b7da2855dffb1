package dmtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"soarmap/internal/datamap"
	"soarmap/internal/project"
)

// InspectTool handles the dm_inspect MCP tool.
type InspectTool struct {
	store project.Store
}

// NewInspectTool creates an InspectTool.
func NewInspectTool(store project.Store) *InspectTool {
	return &InspectTool{store: store}
}

// Definition returns the MCP tool definition for dm_inspect.
func (t *InspectTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_inspect",
		mcp.WithDescription(
			"Inspect a datamap vertex: its kind and kind-specific data, its outgoing "+
				"edges with link/cycle classification, its owner and every inbound "+
				"reference. Omit vertex_id to inspect the root state.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("vertex_id",
			mcp.Description("Vertex to inspect (default: the datamap root)"),
		),
	)
}

// Handle processes the dm_inspect tool call.
func (t *InspectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	ed := p.Editor()
	id := req.GetString("vertex_id", "")
	if id == "" {
		id = ed.Graph().RootID
	}
	v, ok := ed.Index()[id]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("vertex %q not found", id)), nil
	}

	meta := ed.Meta()
	var b strings.Builder
	fmt.Fprintf(&b, "Vertex %s (%s)\n", v.ID, v.Kind)

	switch v.Kind {
	case datamap.KindEnumeration:
		fmt.Fprintf(&b, "Choices: %s\n", strings.Join(v.Choices, ", "))
	case datamap.KindInteger, datamap.KindFloat:
		if v.Min != nil {
			fmt.Fprintf(&b, "Min: %g\n", *v.Min)
		}
		if v.Max != nil {
			fmt.Fprintf(&b, "Max: %g\n", *v.Max)
		}
	case datamap.KindForeign:
		fmt.Fprintf(&b, "Foreign: %s -> %s\n", v.ForeignMap, v.ForeignID)
	}

	if owner, ok := meta.Owner(v.ID); ok {
		if owner == "" {
			b.WriteString("Owner: none (root)\n")
		} else {
			fmt.Fprintf(&b, "Owner: vertex %s\n", owner)
		}
	}

	if len(v.Edges) > 0 {
		b.WriteString("\nOutgoing edges:\n")
		for _, e := range v.Edges {
			info := meta.EdgeInfo(v.ID, e.Name, e.TargetID)
			fmt.Fprintf(&b, "  ^%s -> %s%s", e.Name, e.TargetID, edgeFlags(info))
			if e.Comment != "" {
				fmt.Fprintf(&b, "  # %s", e.Comment)
			}
			b.WriteString("\n")
		}
	}

	if refs := meta.InboundRefs(v.ID); len(refs) > 0 {
		b.WriteString("\nInbound references:\n")
		for _, r := range refs {
			fmt.Fprintf(&b, "  %s ^%s\n", r.ParentID, r.EdgeName)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// edgeFlags renders the classification suffix for an edge listing.
func edgeFlags(info datamap.EdgeInfo) string {
	var flags []string
	if info.IsCycle {
		flags = append(flags, "cycle")
	}
	if info.IsLink {
		flags = append(flags, "link")
	} else if info.HasLinkedSiblings {
		flags = append(flags, "shared")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}
