package project

import (
	"fmt"
	"os"
	"path/filepath"

	"soarmap/internal/datamap"
)

// --- New project scaffolding ---
//
// A fresh project gets the conventional Soar state structure in its datamap
// (superstate, type, name, io with input/output links, operator) and a small
// set of starter .soar sources so the agent loads cleanly from day one.

// defaultAttr describes one attribute of the scaffolded datamap.
type defaultAttr struct {
	parent  string // empty means the root
	name    string
	kind    datamap.VertexKind
	choices []string
	comment string
}

// defaultDatamapAttrs is the standard Soar state skeleton, in creation order.
// Parents are referenced by name, so identifiers must appear before their
// children.
var defaultDatamapAttrs = []defaultAttr{
	{name: "superstate", kind: datamap.KindIdentifier, comment: "parent state, nil at the top state"},
	{name: "type", kind: datamap.KindEnumeration, choices: []string{"state"}},
	{name: "name", kind: datamap.KindString},
	{name: "io", kind: datamap.KindIdentifier},
	{parent: "io", name: "input-link", kind: datamap.KindIdentifier},
	{parent: "io", name: "output-link", kind: datamap.KindIdentifier},
	{name: "operator", kind: datamap.KindIdentifier},
	{parent: "operator", name: "name", kind: datamap.KindString},
	{name: "epmem", kind: datamap.KindIdentifier},
	{name: "smem", kind: datamap.KindIdentifier},
}

// DefaultDatamap builds the datamap a new project starts with.
func DefaultDatamap() *datamap.Graph {
	g := datamap.NewGraph()
	idx := g.BuildIndex()
	byName := map[string]*datamap.Vertex{"": idx[g.RootID]}

	for _, a := range defaultDatamapAttrs {
		parent := byName[a.parent]
		v := &datamap.Vertex{ID: g.AllocateID(), Kind: a.kind}
		if a.kind == datamap.KindEnumeration {
			v.Choices = append([]string(nil), a.choices...)
		}
		g.AddVertex(v)
		parent.Edges = append(parent.Edges, datamap.OutEdge{
			Name:     a.name,
			TargetID: v.ID,
			Comment:  a.comment,
		})
		byName[a.name] = v
	}

	// top-state is a link back to the state itself, not an owned child.
	root := byName[""]
	root.Edges = append(root.Edges, datamap.OutEdge{Name: "top-state", TargetID: root.ID})
	return g
}

// starterSources maps filenames under src/ to their initial content. The
// firstload file sources the rest, matching the conventional Soar layout.
var starterSources = map[string]string{
	"firstload.soar": `source initialize.soar
source elaborations.soar
`,
	"initialize.soar": `sp {propose*initialize
   (state <s> ^superstate nil
             -^name)
-->
   (<s> ^operator <o> +)
   (<o> ^name initialize)
}

sp {apply*initialize
   (state <s> ^operator.name initialize)
-->
   (<s> ^name agent)
}
`,
	"elaborations.soar": `sp {elaborate*state*top-state
   (state <s> ^superstate nil)
-->
   (<s> ^top-state <s>)
}
`,
}

// NewProject scaffolds a project directory: the project document with the
// default datamap plus starter sources. It fails if a project document
// already exists at the destination.
func NewProject(store Store, dir, name string) (*Project, error) {
	docPath := DocumentPath(dir)
	if _, err := os.Stat(docPath); err == nil {
		return nil, fmt.Errorf("project document already exists at %q", docPath)
	}
	if name == "" {
		name = filepath.Base(dir)
	}

	doc := &Document{
		Name:    name,
		Version: "1",
		Datamap: DefaultDatamap(),
	}
	if err := store.Save(docPath, doc); err != nil {
		return nil, err
	}

	srcDir := filepath.Join(dir, SourceDir)
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating source directory: %w", err)
	}
	for file, content := range starterSources {
		path := filepath.Join(srcDir, file)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", file, err)
		}
	}

	return Open(store, docPath)
}
