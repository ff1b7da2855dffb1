package dmtools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mark3labs/mcp-go/mcp"

	"soarmap/internal/parser"
	"soarmap/internal/project"
	"soarmap/internal/rules"
	"soarmap/internal/validate"
)

// ValidateTool handles the dm_validate MCP tool.
type ValidateTool struct {
	store project.Store
}

// NewValidateTool creates a ValidateTool.
func NewValidateTool(store project.Store) *ValidateTool {
	return &ValidateTool{store: store}
}

// Definition returns the MCP tool definition for dm_validate.
func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_validate",
		mcp.WithDescription(
			"Validate Soar rule text against the project's datamap: every attribute "+
				"path must exist somewhere in the datamap, and literal values tested "+
				"against enumeration attributes must be legal choices. Validates the "+
				"given file, inline source, or — when neither is given — every .soar "+
				"file under the project's src/ directory.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("file",
			mcp.Description("Rule file to validate (absolute or relative to the project directory)"),
		),
		mcp.WithString("source",
			mcp.Description("Inline rule text to validate instead of a file"),
		),
	)
}

// Handle processes the dm_validate tool call.
func (t *ValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}
	v := validate.New(p.Doc.Datamap)

	var docs []*rules.Document
	switch {
	case req.GetString("source", "") != "":
		docs = append(docs, parser.Parse(req.GetString("source", "")))
	case req.GetString("file", "") != "":
		file := req.GetString("file", "")
		if !filepath.IsAbs(file) {
			file = filepath.Join(p.Dir(), file)
		}
		doc, err := parseRuleFile(file)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		docs = append(docs, doc)
	default:
		srcDir := filepath.Join(p.Dir(), project.SourceDir)
		files, err := doublestar.FilepathGlob(filepath.Join(srcDir, "**", "*.soar"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing rule files: %v", err)), nil
		}
		for _, f := range files {
			doc, err := parseRuleFile(f)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			docs = append(docs, doc)
		}
	}

	var b strings.Builder
	total := 0
	for _, doc := range docs {
		for _, d := range v.ValidateDocument(doc) {
			total++
			b.WriteString(FormatDiagnostic(doc.Path, d))
			b.WriteString("\n")
		}
	}
	if total == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No problems found in %d file(s).", len(docs))), nil
	}
	fmt.Fprintf(&b, "%d problem(s) found.", total)
	return mcp.NewToolResultText(b.String()), nil
}

// parseRuleFile reads and parses one rule file.
func parseRuleFile(path string) (*rules.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	return parser.ParseFile(path, string(data)), nil
}

// FormatDiagnostic renders a diagnostic as `path:line:col: severity: message`
// with 1-based line and column numbers.
func FormatDiagnostic(path string, d rules.Diagnostic) string {
	if path == "" {
		path = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		path, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message)
}

// ─── SuggestTool ────────────────────────────────────────────────────────────

// SuggestTool handles the dm_suggest MCP tool.
type SuggestTool struct {
	store project.Store
}

// NewSuggestTool creates a SuggestTool.
func NewSuggestTool(store project.Store) *SuggestTool {
	return &SuggestTool{store: store}
}

// Definition returns the MCP tool definition for dm_suggest.
func (t *SuggestTool) Definition() mcp.Tool {
	return mcp.NewTool("dm_suggest",
		mcp.WithDescription(
			"Suggest attribute names from the datamap close to a possibly misspelled "+
				"name, ranked by edit distance.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project directory (or the soarmap.json file itself)"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The attribute name to find near matches for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum suggestions to return (default 5)"),
		),
	)
}

// Handle processes the dm_suggest tool call.
func (t *SuggestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := openProject(t.store, req)
	if errResult != nil {
		return errResult, nil
	}

	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	matches := validate.Suggestions(p.Doc.Datamap, name, intArg(req, "limit", 5))
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No attributes close to %q.", name)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Did you mean: %s?", strings.Join(matches, ", "))), nil
}
