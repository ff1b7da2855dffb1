package dmtools

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"soarmap/internal/project"
	"soarmap/internal/search"
)

// IndexDir is the subdirectory of a project that holds derived data such as
// the search index.
const IndexDir = ".soarmap"

// SearchTool handles the dm_search MCP tool.
type SearchTool struct {
	store project.Store
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(store project.Store) *SearchTool {
	return &SearchTool{store: store}
}

// Definition returns the MCP tool definition for dm_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_search",
		mcp.WithDescription(
			"Full-text search over datamap attribute names and comments. Returns each "+
				"match with its path from the state root, so results are directly "+
				"addressable. Append * to a word for prefix search.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms (e.g. 'input', 'velo*')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default 10)"),
		),
	)
}

// Handle processes the dm_search tool call. The index is rebuilt from the
// current document on every call: it is derived data, and rebuild cost is
// negligible next to staleness bugs.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	ix, err := search.Open(filepath.Join(p.Dir(), IndexDir))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open search index: %v", err)), nil
	}
	defer func() {
		if err := ix.Close(); err != nil {
			log.Printf("WARNING: search index close: %v", err)
		}
	}()

	if err := ix.Rebuild(p.Doc.Datamap, p.Editor().Meta()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to rebuild search index: %v", err)), nil
	}

	hits, err := ix.Search(query, intArg(req, "limit", 10))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No attributes match %q.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es) for %q:\n", len(hits), query)
	for _, h := range hits {
		fmt.Fprintf(&b, "  %s (%s, vertex %s)", h.Path, h.Kind, h.TargetID)
		if h.Comment != "" {
			fmt.Fprintf(&b, "  # %s", h.Comment)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}
