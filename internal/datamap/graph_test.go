package datamap

import (
	"encoding/json"
	"reflect"
	"testing"
)

// --- Id allocation ---

func TestAllocateID_Monotonic(t *testing.T) {
	g := NewGraph()

	prev := g.RootID
	for i := 0; i < 5; i++ {
		id := g.AllocateID()
		if id <= prev && len(id) <= len(prev) {
			t.Fatalf("allocated id %q not greater than previous %q", id, prev)
		}
		g.AddVertex(&Vertex{ID: id, Kind: KindString})
		prev = id
	}
}

func TestAllocateID_NeverReusesDeletedIDs(t *testing.T) {
	g := NewGraph()
	id := g.AllocateID()
	g.AddVertex(&Vertex{ID: id, Kind: KindString})

	// Delete the highest-numbered vertex, then allocate again.
	g.RemoveVertex(id)
	next := g.AllocateID()

	if next == id {
		t.Fatalf("id %q was reused after deletion", id)
	}
}

func TestAllocateID_SeedsFromExistingIDs(t *testing.T) {
	// A freshly loaded graph has no allocation history; the allocator must
	// scan existing ids and continue past the maximum.
	g := &Graph{RootID: "1", Vertices: []*Vertex{
		{ID: "1", Kind: KindIdentifier},
		{ID: "7", Kind: KindString},
		{ID: "3", Kind: KindString},
	}}

	if got := g.AllocateID(); got != "8" {
		t.Errorf("AllocateID = %q, want 8", got)
	}
}

// --- Root lookup ---

func TestRoot_MissingRoot(t *testing.T) {
	g := &Graph{RootID: "42"}
	if _, err := g.Root(g.BuildIndex()); err == nil {
		t.Error("expected error for missing root vertex")
	}
}

func TestRoot_WrongKind(t *testing.T) {
	g := &Graph{RootID: "1", Vertices: []*Vertex{{ID: "1", Kind: KindString}}}
	if _, err := g.Root(g.BuildIndex()); err == nil {
		t.Error("expected error for non-identifier root")
	}
}

// --- JSON round trip ---

func TestGraph_JSONRoundTrip(t *testing.T) {
	min, max := 0.0, 99.5
	g := &Graph{RootID: "1", Vertices: []*Vertex{
		{ID: "1", Kind: KindIdentifier, Edges: []OutEdge{
			{Name: "mode", TargetID: "2", Comment: "current mode"},
			{Name: "count", TargetID: "3"},
			{Name: "io", TargetID: "4"},
		}},
		{ID: "2", Kind: KindEnumeration, Choices: []string{"idle", "active"}},
		{ID: "3", Kind: KindInteger, Min: &min, Max: &max},
		{ID: "4", Kind: KindIdentifier},
		{ID: "5", Kind: KindForeign, ForeignMap: "other.json", ForeignID: "12"},
	}}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var loaded Graph
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(g.Vertices, loaded.Vertices) || g.RootID != loaded.RootID {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, g)
	}

	// Serializing the loaded copy must reproduce identical bytes: field
	// order and omission of optional fields are deterministic.
	again, err := json.Marshal(&loaded)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if string(data) != string(again) {
		t.Errorf("serialization not byte-stable:\n first  %s\n second %s", data, again)
	}
}

// --- Attribute name validation ---

func TestValidateAttributeName(t *testing.T) {
	valid := []string{"mode", "input-link", "my_attr", "x1", "1st", "op*count"}
	for _, name := range valid {
		if err := ValidateAttributeName(name); err != nil {
			t.Errorf("ValidateAttributeName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "has space", "dotted.name", "^caret", "-leading"}
	for _, name := range invalid {
		if err := ValidateAttributeName(name); err == nil {
			t.Errorf("ValidateAttributeName(%q) = nil, want error", name)
		}
	}
}

func TestValidateKind(t *testing.T) {
	for k := range validKinds {
		if err := ValidateKind(k); err != nil {
			t.Errorf("ValidateKind(%q) = %v, want nil", k, err)
		}
	}
	if err := ValidateKind("pointer"); err == nil {
		t.Error("ValidateKind(pointer) = nil, want error")
	}
}
