// Package editor implements the structural mutation operations over a datamap
// graph: adding, renaming, retyping, linking, unlinking and deleting
// attributes.
//
// Every operation follows the same discipline: validate preconditions before
// touching anything, mutate in place, persist the owning document, then
// rebuild the derived metadata from scratch. Precondition failures are
// returned errors with no partial side effect. A persistence failure leaves
// the in-memory graph mutated but unpersisted; reconciling that (retry or
// reload) is the caller's responsibility.
package editor

import (
	"errors"
	"fmt"

	"soarmap/internal/datamap"
)

// --- Error taxonomy ---
//
// Sentinels cover the structural-precondition classes hosts branch on, e.g.
// redirecting a refused delete to RemoveLinkedAttribute.

var (
	ErrVertexNotFound = errors.New("vertex not found")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrNotIdentifier  = errors.New("vertex is not an identifier")
	ErrDuplicateName  = errors.New("attribute name already exists on parent")
	ErrEmptyChoices   = errors.New("enumeration requires at least one choice")
	ErrSharedTarget   = errors.New("target has other inbound edges")
)

// PersistFunc writes the graph's owning document to its backing store. The
// editor calls it after every successful mutation.
type PersistFunc func() error

// AttributeSpec describes a new attribute for AddAttribute.
type AttributeSpec struct {
	Name    string
	Kind    datamap.VertexKind
	Choices []string // Enumeration only
	Min     *float64 // Integer / Float only
	Max     *float64
	Comment string
}

// AddResult reports the identity of a newly created vertex and edge so
// callers can update their own indices without re-querying the graph.
type AddResult struct {
	VertexID string
	ParentID string
	EdgeName string
}

// Editor is the single mutation authority for one graph instance. It is not
// safe for concurrent use: the owner of the graph must serialize mutations
// (one operation completes, including the metadata rebuild, before the next
// begins). Reads through Meta() may run concurrently only between mutations.
type Editor struct {
	graph   *datamap.Graph
	index   datamap.Index
	meta    *datamap.Meta
	persist PersistFunc
}

// New creates an editor over the graph with an initial metadata build.
// persist may be nil when the caller manages persistence itself (e.g. tests).
func New(g *datamap.Graph, persist PersistFunc) *Editor {
	idx := g.BuildIndex()
	return &Editor{
		graph:   g,
		index:   idx,
		meta:    datamap.BuildMeta(g, idx),
		persist: persist,
	}
}

// Graph returns the underlying graph.
func (ed *Editor) Graph() *datamap.Graph { return ed.graph }

// Index returns the live vertex index.
func (ed *Editor) Index() datamap.Index { return ed.index }

// Meta returns the metadata for the current snapshot. The returned value is
// replaced, not mutated, by subsequent operations.
func (ed *Editor) Meta() *datamap.Meta { return ed.meta }

// finish persists the document and rebuilds the metadata cache. The cache is
// rebuilt even when persistence fails so that derived state always matches
// the in-memory graph.
func (ed *Editor) finish() error {
	var persistErr error
	if ed.persist != nil {
		persistErr = ed.persist()
	}
	ed.index = ed.graph.BuildIndex()
	ed.meta = datamap.BuildMeta(ed.graph, ed.index)
	if persistErr != nil {
		return fmt.Errorf("persisting datamap: %w", persistErr)
	}
	return nil
}

// identifier resolves id to an Identifier vertex.
func (ed *Editor) identifier(id string) (*datamap.Vertex, error) {
	v, ok := ed.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVertexNotFound, id)
	}
	if v.Kind != datamap.KindIdentifier {
		return nil, fmt.Errorf("%w: %q has kind %q", ErrNotIdentifier, id, v.Kind)
	}
	return v, nil
}

// --- Add attribute ---

// AddAttribute creates a new vertex and an edge to it from the parent.
// It fails if the parent is not an Identifier, the name is malformed, the
// name already exists on the parent, or the spec is incomplete for its kind.
func (ed *Editor) AddAttribute(parentID string, spec AttributeSpec) (*AddResult, error) {
	parent, err := ed.identifier(parentID)
	if err != nil {
		return nil, err
	}
	if err := datamap.ValidateAttributeName(spec.Name); err != nil {
		return nil, err
	}
	if err := datamap.ValidateKind(spec.Kind); err != nil {
		return nil, err
	}
	if parent.HasEdgeNamed(spec.Name) {
		return nil, fmt.Errorf("%w: %q on vertex %q", ErrDuplicateName, spec.Name, parentID)
	}
	if spec.Kind == datamap.KindEnumeration && len(spec.Choices) == 0 {
		return nil, ErrEmptyChoices
	}

	v := &datamap.Vertex{ID: ed.graph.AllocateID(), Kind: spec.Kind}
	switch spec.Kind {
	case datamap.KindEnumeration:
		v.Choices = append([]string(nil), spec.Choices...)
	case datamap.KindInteger, datamap.KindFloat:
		v.Min, v.Max = spec.Min, spec.Max
	}

	ed.graph.AddVertex(v)
	ed.index[v.ID] = v
	parent.Edges = append(parent.Edges, datamap.OutEdge{
		Name:     spec.Name,
		TargetID: v.ID,
		Comment:  spec.Comment,
	})

	if err := ed.finish(); err != nil {
		return nil, err
	}
	return &AddResult{VertexID: v.ID, ParentID: parentID, EdgeName: spec.Name}, nil
}

// AddLinkedAttribute creates a new edge from the parent to an already
// existing vertex; no vertex is created. Duplicate-name checking is
// deliberately skipped: the same label may legitimately appear twice on one
// parent when it designates a shared sub-structure.
func (ed *Editor) AddLinkedAttribute(parentID, name, targetID string) (*AddResult, error) {
	parent, err := ed.identifier(parentID)
	if err != nil {
		return nil, err
	}
	if err := datamap.ValidateAttributeName(name); err != nil {
		return nil, err
	}
	if _, ok := ed.index[targetID]; !ok {
		return nil, fmt.Errorf("%w: link target %q", ErrVertexNotFound, targetID)
	}

	parent.Edges = append(parent.Edges, datamap.OutEdge{Name: name, TargetID: targetID})

	if err := ed.finish(); err != nil {
		return nil, err
	}
	return &AddResult{VertexID: targetID, ParentID: parentID, EdgeName: name}, nil
}

// --- Edit attribute ---

// RenameAttribute changes the name of an existing edge, subject to the same
// sibling-uniqueness rule as AddAttribute.
func (ed *Editor) RenameAttribute(parentID, name, targetID, newName string) error {
	parent, err := ed.identifier(parentID)
	if err != nil {
		return err
	}
	edge := parent.Edge(name, targetID)
	if edge == nil {
		return fmt.Errorf("%w: ^%s -> %s on vertex %q", ErrEdgeNotFound, name, targetID, parentID)
	}
	if err := datamap.ValidateAttributeName(newName); err != nil {
		return err
	}
	if newName != name && parent.HasEdgeNamed(newName) {
		return fmt.Errorf("%w: %q on vertex %q", ErrDuplicateName, newName, parentID)
	}

	edge.Name = newName
	return ed.finish()
}

// EditComment replaces the comment on an existing edge; an empty string
// clears it.
func (ed *Editor) EditComment(parentID, name, targetID, comment string) error {
	parent, err := ed.identifier(parentID)
	if err != nil {
		return err
	}
	edge := parent.Edge(name, targetID)
	if edge == nil {
		return fmt.Errorf("%w: ^%s -> %s on vertex %q", ErrEdgeNotFound, name, targetID, parentID)
	}

	edge.Comment = comment
	return ed.finish()
}

// ChangeType retypes the target vertex of an existing edge.
//
// Leaving Identifier is destructive: every vertex in the subtree reached
// through the target's own edges is deleted first. Entering Identifier is
// non-destructive (the edge list starts empty); entering Enumeration
// re-initializes the choice set from spec.Choices.
func (ed *Editor) ChangeType(parentID, name, targetID string, spec AttributeSpec) error {
	parent, err := ed.identifier(parentID)
	if err != nil {
		return err
	}
	if parent.Edge(name, targetID) == nil {
		return fmt.Errorf("%w: ^%s -> %s on vertex %q", ErrEdgeNotFound, name, targetID, parentID)
	}
	target, ok := ed.index[targetID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrVertexNotFound, targetID)
	}
	if err := datamap.ValidateKind(spec.Kind); err != nil {
		return err
	}
	if spec.Kind == datamap.KindEnumeration && len(spec.Choices) == 0 {
		return ErrEmptyChoices
	}
	if spec.Kind == target.Kind {
		return nil // nothing to do; no persist, no rebuild
	}

	if target.Kind == datamap.KindIdentifier {
		visited := map[string]bool{target.ID: true, parentID: true, ed.graph.RootID: true}
		for _, e := range target.Edges {
			ed.deleteSubtree(e.TargetID, visited)
		}
	}

	target.Kind = spec.Kind
	target.Edges = nil
	target.Choices = nil
	target.Min, target.Max = nil, nil
	target.ForeignMap, target.ForeignID = "", ""
	switch spec.Kind {
	case datamap.KindEnumeration:
		target.Choices = append([]string(nil), spec.Choices...)
	case datamap.KindInteger, datamap.KindFloat:
		target.Min, target.Max = spec.Min, spec.Max
	}

	return ed.finish()
}

// --- Delete / unlink ---

// DeleteAttribute removes the edge from the parent and recursively deletes
// the target vertex together with every vertex reached through its own
// outgoing edges — unconditionally, without consulting ownership or inbound
// counts. Edges elsewhere that pointed into the deleted subtree are left
// dangling; hosts that want the refusing behavior use DeleteAttributeSafe.
func (ed *Editor) DeleteAttribute(parentID, name, targetID string) error {
	parent, err := ed.identifier(parentID)
	if err != nil {
		return err
	}
	if parent.Edge(name, targetID) == nil {
		return fmt.Errorf("%w: ^%s -> %s on vertex %q", ErrEdgeNotFound, name, targetID, parentID)
	}

	removeEdge(parent, name, targetID)
	// The parent and the root are pre-seeded as visited: a cycle edge inside
	// the subtree must not take out the vertex we just detached from, nor the
	// graph root.
	ed.deleteSubtree(targetID, map[string]bool{parentID: true, ed.graph.RootID: true})
	return ed.finish()
}

// DeleteAttributeSafe is the ownership-aware variant of DeleteAttribute: it
// refuses with ErrSharedTarget when the target has inbound edges other than
// the one being deleted, so the caller can redirect to
// RemoveLinkedAttribute instead of orphaning references elsewhere.
func (ed *Editor) DeleteAttributeSafe(parentID, name, targetID string) error {
	if ed.meta.InboundCount(targetID) > 1 {
		return fmt.Errorf("%w: vertex %q has %d inbound edges", ErrSharedTarget, targetID, ed.meta.InboundCount(targetID))
	}
	return ed.DeleteAttribute(parentID, name, targetID)
}

// RemoveLinkedAttribute removes only the identified edge; the target vertex
// and every other inbound edge to it are untouched. This is the safe
// counterpart to DeleteAttribute for edges classified as links.
func (ed *Editor) RemoveLinkedAttribute(parentID, name, targetID string) error {
	parent, err := ed.identifier(parentID)
	if err != nil {
		return err
	}
	if parent.Edge(name, targetID) == nil {
		return fmt.Errorf("%w: ^%s -> %s on vertex %q", ErrEdgeNotFound, name, targetID, parentID)
	}

	removeEdge(parent, name, targetID)
	return ed.finish()
}

// deleteSubtree removes the vertex and, for every Identifier descendant
// reached through its own outgoing edges, those too. The visited set guards
// against mutual references, which would otherwise recurse forever.
func (ed *Editor) deleteSubtree(id string, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true

	v, ok := ed.index[id]
	if !ok {
		return
	}
	if v.Kind == datamap.KindIdentifier {
		for _, e := range v.Edges {
			ed.deleteSubtree(e.TargetID, visited)
		}
	}
	ed.graph.RemoveVertex(id)
	delete(ed.index, id)
}

// removeEdge deletes the first edge matching (name, targetID) from the vertex.
func removeEdge(v *datamap.Vertex, name, targetID string) {
	for i := range v.Edges {
		if v.Edges[i].Name == name && v.Edges[i].TargetID == targetID {
			v.Edges = append(v.Edges[:i], v.Edges[i+1:]...)
			return
		}
	}
}
