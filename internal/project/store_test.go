package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"soarmap/internal/datamap"
	"soarmap/internal/editor"
)

// --- DocumentPath ---

func TestDocumentPath_Directory(t *testing.T) {
	got := DocumentPath("/proj")
	want := filepath.Join("/proj", DocumentFile)
	if got != want {
		t.Errorf("DocumentPath = %s, want %s", got, want)
	}
}

func TestDocumentPath_ExplicitFile(t *testing.T) {
	if got := DocumentPath("/proj/custom.json"); got != "/proj/custom.json" {
		t.Errorf("DocumentPath = %s, want unchanged", got)
	}
}

// --- Save / Load ---

func TestSaveLoad_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()
	path := DocumentPath(tmpDir)

	doc := &Document{
		Name:    "demo",
		Version: "1",
		Layout:  json.RawMessage(`{"folders":[{"name":"all","children":[]}]}`),
		Datamap: DefaultDatamap(),
	}
	if err := store.Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "demo" {
		t.Errorf("Name = %s, want demo", loaded.Name)
	}
	if loaded.Datamap.RootID != doc.Datamap.RootID {
		t.Errorf("RootID = %s, want %s", loaded.Datamap.RootID, doc.Datamap.RootID)
	}
	if len(loaded.Datamap.Vertices) != len(doc.Datamap.Vertices) {
		t.Errorf("vertex count = %d, want %d", len(loaded.Datamap.Vertices), len(doc.Datamap.Vertices))
	}
}

func TestSaveLoad_LayoutPreservedVerbatim(t *testing.T) {
	// The layout subtree belongs to the host: it must survive a load/save
	// cycle without reshaping.
	tmpDir := t.TempDir()
	store := NewFileStore()
	path := DocumentPath(tmpDir)

	layout := `{"custom":{"deeply":["nested",1,true]}}`
	doc := &Document{Datamap: datamap.NewGraph(), Layout: json.RawMessage(layout)}
	if err := store.Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var want, got any
	if err := json.Unmarshal([]byte(layout), &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(loaded.Layout, &got); err != nil {
		t.Fatalf("layout not valid JSON after round trip: %v", err)
	}
	wantBytes, _ := json.Marshal(want)
	gotBytes, _ := json.Marshal(got)
	if string(wantBytes) != string(gotBytes) {
		t.Errorf("layout changed:\n got  %s\n want %s", gotBytes, wantBytes)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	store := NewFileStore()
	if _, err := store.Load(filepath.Join(t.TempDir(), "soarmap.json")); err == nil {
		t.Error("expected error for missing document")
	}
}

func TestLoad_RejectsMissingDatamap(t *testing.T) {
	tmpDir := t.TempDir()
	path := DocumentPath(tmpDir)
	if err := os.WriteFile(path, []byte(`{"name":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore().Load(path); err == nil {
		t.Error("expected error for document without datamap")
	}
}

func TestLoad_RejectsBadRoot(t *testing.T) {
	tmpDir := t.TempDir()
	path := DocumentPath(tmpDir)
	raw := `{"datamap":{"rootId":"1","vertices":[{"id":"1","kind":"string"}]}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore().Load(path); err == nil {
		t.Error("expected error for non-identifier root")
	}
}

// --- NewProject scaffolding ---

func TestNewProject_CreatesDocumentAndSources(t *testing.T) {
	tmpDir := t.TempDir()
	p, err := NewProject(NewFileStore(), tmpDir, "my-agent")
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}

	if p.Doc.Name != "my-agent" {
		t.Errorf("Name = %s, want my-agent", p.Doc.Name)
	}
	if _, err := os.Stat(DocumentPath(tmpDir)); err != nil {
		t.Errorf("project document missing: %v", err)
	}
	for _, f := range []string{"firstload.soar", "initialize.soar", "elaborations.soar"} {
		if _, err := os.Stat(filepath.Join(tmpDir, SourceDir, f)); err != nil {
			t.Errorf("starter source %s missing: %v", f, err)
		}
	}
}

func TestNewProject_RefusesExisting(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := NewProject(NewFileStore(), tmpDir, "a"); err != nil {
		t.Fatalf("first NewProject: %v", err)
	}
	if _, err := NewProject(NewFileStore(), tmpDir, "b"); err == nil {
		t.Error("expected error when project already exists")
	}
}

func TestDefaultDatamap_StandardStateAttributes(t *testing.T) {
	g := DefaultDatamap()
	idx := g.BuildIndex()
	root, err := g.Root(idx)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}

	for _, name := range []string{"superstate", "type", "name", "io", "operator", "top-state"} {
		if !root.HasEdgeNamed(name) {
			t.Errorf("default root missing attribute %q", name)
		}
	}

	// io carries the input and output links.
	var io *datamap.Vertex
	for _, e := range root.Edges {
		if e.Name == "io" {
			io = idx[e.TargetID]
		}
	}
	if io == nil {
		t.Fatal("io vertex missing")
	}
	if !io.HasEdgeNamed("input-link") || !io.HasEdgeNamed("output-link") {
		t.Errorf("io edges = %+v, want input-link and output-link", io.Edges)
	}
}

func TestOpen_WiresEditorToSave(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()
	p, err := NewProject(store, tmpDir, "demo")
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}

	res, err := p.Editor().AddAttribute(p.Doc.Datamap.RootID, editor.AttributeSpec{
		Name: "mission", Kind: datamap.KindString,
	})
	if err != nil {
		t.Fatalf("AddAttribute: %v", err)
	}

	// A second open must see the persisted edit.
	reopened, err := Open(store, tmpDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	idx := reopened.Doc.Datamap.BuildIndex()
	if _, ok := idx[res.VertexID]; !ok {
		t.Error("edit not persisted across reopen")
	}
}
