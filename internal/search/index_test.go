package search

import (
	"testing"

	"soarmap/internal/datamap"
)

// --- Test helpers ---

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

// testGraph builds root --io--> Identifier --input-link--> Identifier with a
// commented velocity attribute under input-link.
func testGraph() (*datamap.Graph, *datamap.Meta) {
	g := &datamap.Graph{RootID: "1", Vertices: []*datamap.Vertex{
		{ID: "1", Kind: datamap.KindIdentifier, Edges: []datamap.OutEdge{
			{Name: "io", TargetID: "2"},
		}},
		{ID: "2", Kind: datamap.KindIdentifier, Edges: []datamap.OutEdge{
			{Name: "input-link", TargetID: "3"},
		}},
		{ID: "3", Kind: datamap.KindIdentifier, Edges: []datamap.OutEdge{
			{Name: "velocity", TargetID: "4", Comment: "speed from the simulator"},
		}},
		{ID: "4", Kind: datamap.KindFloat},
	}}
	return g, datamap.BuildMeta(g, g.BuildIndex())
}

// --- Rebuild + Search ---

func TestSearch_FindsByName(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testGraph()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := ix.Search("velocity", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	h := hits[0]
	if h.Name != "velocity" {
		t.Errorf("name = %s, want velocity", h.Name)
	}
	if h.Path != "state.io.input-link.velocity" {
		t.Errorf("path = %s, want state.io.input-link.velocity", h.Path)
	}
	if h.Kind != string(datamap.KindFloat) {
		t.Errorf("kind = %s, want float", h.Kind)
	}
}

func TestSearch_FindsByComment(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testGraph()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := ix.Search("simulator", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "velocity" {
		t.Errorf("hits = %+v, want velocity via comment", hits)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testGraph()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := ix.Search("   ", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0 for empty query", len(hits))
	}
}

func TestRebuild_ReplacesPreviousContents(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testGraph()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// Rebuild from a graph without the attribute; the old row must be gone.
	g := &datamap.Graph{RootID: "1", Vertices: []*datamap.Vertex{
		{ID: "1", Kind: datamap.KindIdentifier, Edges: []datamap.OutEdge{
			{Name: "mission", TargetID: "2"},
		}},
		{ID: "2", Kind: datamap.KindString},
	}}
	if err := ix.Rebuild(g, datamap.BuildMeta(g, g.BuildIndex())); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}

	hits, err := ix.Search("velocity", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("stale hits = %+v, want none", hits)
	}

	hits, err = ix.Search("mission", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("hits = %d, want 1 for new attribute", len(hits))
	}
}

func TestSearch_PrefixQuery(t *testing.T) {
	ix := newTestIndex(t)
	if err := ix.Rebuild(testGraph()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := ix.Search("velo*", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("hits = %d, want 1 for prefix query", len(hits))
	}
}

func TestSanitizeFTS(t *testing.T) {
	if got := sanitizeFTS(`input OR "link"`); got != `"input" "OR" "link"` {
		t.Errorf("sanitizeFTS = %q", got)
	}
	if got := sanitizeFTS(""); got != "" {
		t.Errorf("sanitizeFTS(empty) = %q", got)
	}
}
