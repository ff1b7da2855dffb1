package datamap

// --- Derived metadata: ownership, inbound references, edge classification ---
//
// Meta is a rebuildable index over one graph snapshot. It never mutates the
// graph and is thrown away and rebuilt after every mutation; incremental
// maintenance is deliberately not attempted.

// InboundRef records one edge pointing at a vertex: the parent that holds the
// edge, the edge's name, and the target (the vertex this ref is keyed under).
type InboundRef struct {
	ParentID string
	EdgeName string
	TargetID string
}

// EdgeInfo classifies a single edge occurrence.
//
// IsCycle marks one half of a mutual-reference pair (A → B and B → A);
// cycles are distinct from links because naive traversal through them loops.
// IsLink marks a non-owning inbound edge to a vertex that already has an
// owner elsewhere; mutations that only know the edge must treat the target
// as read-only. IsCycle and IsLink are never both true.
type EdgeInfo struct {
	IsCycle           bool
	HasLinkedSiblings bool
	IsLink            bool
}

type edgeKey struct {
	parentID string
	edgeName string
	targetID string
}

// Meta holds the derived relationships for one graph snapshot.
type Meta struct {
	inbound map[string][]InboundRef
	owner   map[string]string // vertex id -> owning parent id; root maps to ""
	edges   map[edgeKey]EdgeInfo
}

// BuildMeta computes the full metadata for a graph snapshot.
func BuildMeta(g *Graph, idx Index) *Meta {
	m := &Meta{
		inbound: make(map[string][]InboundRef),
		owner:   make(map[string]string),
		edges:   make(map[edgeKey]EdgeInfo),
	}

	// 1. Inbound index: every edge of every Identifier vertex, keyed by target.
	for _, v := range g.Vertices {
		if v.Kind != KindIdentifier {
			continue
		}
		for _, e := range v.Edges {
			m.inbound[e.TargetID] = append(m.inbound[e.TargetID], InboundRef{
				ParentID: v.ID,
				EdgeName: e.Name,
				TargetID: e.TargetID,
			})
		}
	}

	// 2. Ownership: depth-first from the root; the first edge that reaches a
	// vertex in traversal order wins. The visited guard doubles as the cycle
	// guard for mutual references.
	if root, ok := idx[g.RootID]; ok {
		m.owner[root.ID] = ""
		stack := []*Vertex{root}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cur.Kind != KindIdentifier {
				continue
			}
			for _, e := range cur.Edges {
				if _, owned := m.owner[e.TargetID]; owned {
					continue
				}
				target, ok := idx[e.TargetID]
				if !ok {
					continue // dangling edge; tolerated
				}
				m.owner[e.TargetID] = cur.ID
				stack = append(stack, target)
			}
		}
	}

	// Fallback for fully disconnected subgraphs: a vertex with inbound edges
	// that was never reached from the root takes the parent of its first
	// recorded inbound edge as owner.
	for targetID, refs := range m.inbound {
		if _, owned := m.owner[targetID]; !owned && len(refs) > 0 {
			m.owner[targetID] = refs[0].ParentID
		}
	}

	// 3. Edge classification.
	for targetID, refs := range m.inbound {
		for _, ref := range refs {
			info := EdgeInfo{}
			info.IsCycle = m.isMutual(idx, ref.ParentID, targetID)
			info.HasLinkedSiblings = len(refs) > 1 && !info.IsCycle
			info.IsLink = info.HasLinkedSiblings && ref.ParentID != m.owner[targetID]
			m.edges[edgeKey{ref.ParentID, ref.EdgeName, targetID}] = info
		}
	}

	return m
}

// isMutual reports whether target is an Identifier with an edge back to parent.
func (m *Meta) isMutual(idx Index, parentID, targetID string) bool {
	target, ok := idx[targetID]
	if !ok || target.Kind != KindIdentifier {
		return false
	}
	for _, e := range target.Edges {
		if e.TargetID == parentID {
			return true
		}
	}
	return false
}

// EdgeInfo returns the classification for one edge occurrence. Unknown edges
// classify as the zero value (not a cycle, not a link).
func (m *Meta) EdgeInfo(parentID, edgeName, targetID string) EdgeInfo {
	return m.edges[edgeKey{parentID, edgeName, targetID}]
}

// Owner returns the owning parent id of a vertex. The root (and any vertex
// with no owner at all) reports ok with an empty parent id only for the root;
// vertices the cache never saw report ok == false.
func (m *Meta) Owner(vertexID string) (parentID string, ok bool) {
	parentID, ok = m.owner[vertexID]
	return parentID, ok
}

// InboundRefs returns every edge pointing at the vertex, in the order the
// cache discovered them. The slice is shared; callers must not mutate it.
func (m *Meta) InboundRefs(vertexID string) []InboundRef {
	return m.inbound[vertexID]
}

// InboundCount returns the number of edges pointing at the vertex.
func (m *Meta) InboundCount(vertexID string) int {
	return len(m.inbound[vertexID])
}
