package datamap

import (
	"fmt"
	"strconv"
)

// Graph is the schema graph document: a root Identifier vertex plus the flat
// list of all vertices. Vertices are connected only through OutEdges; the
// model tolerates unreachable vertices as a transient state during
// multi-step edits.
type Graph struct {
	RootID   string    `json:"rootId"`
	Vertices []*Vertex `json:"vertices"`

	// maxIssued tracks the highest numeric id ever allocated through this
	// in-memory instance, so ids of vertices deleted within a session are
	// never handed out again. Not persisted: on load it is re-seeded from
	// the highest id present in the document.
	maxIssued int64
}

// Index maps vertex ids to vertices for O(1) lookup. It is a projection over
// Graph.Vertices and must be rebuilt (or maintained) whenever vertices are
// added or removed.
type Index map[string]*Vertex

// BuildIndex creates a fresh id index over the graph's vertices.
func (g *Graph) BuildIndex() Index {
	idx := make(Index, len(g.Vertices))
	for _, v := range g.Vertices {
		idx[v.ID] = v
	}
	return idx
}

// Root returns the root vertex, or an error if it is missing or not an
// Identifier. A graph without a valid root is structurally broken.
func (g *Graph) Root(idx Index) (*Vertex, error) {
	root, ok := idx[g.RootID]
	if !ok {
		return nil, fmt.Errorf("root vertex %q not found", g.RootID)
	}
	if root.Kind != KindIdentifier {
		return nil, fmt.Errorf("root vertex %q has kind %q, want identifier", g.RootID, root.Kind)
	}
	return root, nil
}

// AllocateID returns the next unused vertex id. Ids are decimal strings; the
// allocator scans every id currently in the graph, takes the larger of that
// maximum and the highest id issued so far, and returns max+1. Ids are never
// reused, including ids of vertices deleted earlier in the session.
func (g *Graph) AllocateID() string {
	max := g.maxIssued
	for _, v := range g.Vertices {
		if n, err := strconv.ParseInt(v.ID, 10, 64); err == nil && n > max {
			max = n
		}
	}
	g.maxIssued = max + 1
	return strconv.FormatInt(g.maxIssued, 10)
}

// AddVertex appends a vertex to the graph. The caller is responsible for
// keeping any live Index in sync.
func (g *Graph) AddVertex(v *Vertex) {
	g.Vertices = append(g.Vertices, v)
}

// RemoveVertex deletes the vertex with the given id from the vertex list.
// It does not touch edges held by other vertices.
func (g *Graph) RemoveVertex(id string) {
	for i, v := range g.Vertices {
		if v.ID == id {
			g.Vertices = append(g.Vertices[:i], g.Vertices[i+1:]...)
			return
		}
	}
}

// NewGraph creates a graph containing only a root Identifier vertex.
func NewGraph() *Graph {
	g := &Graph{}
	root := &Vertex{ID: g.AllocateID(), Kind: KindIdentifier}
	g.RootID = root.ID
	g.AddVertex(root)
	return g
}
