// Package datamap implements the typed schema graph that describes the legal
// structure of a Soar agent's working memory, plus the derived metadata
// (ownership, links, cycles) that hosts need to render and mutate it safely.
//
// The graph itself is a plain JSON-serializable document (see graph.go); all
// derived relationships live in Meta (see meta.go) and are rebuilt from
// scratch after every mutation rather than maintained incrementally.
package datamap

import (
	"fmt"
	"regexp"
)

// --- Vertex kind enum ---

// VertexKind identifies the type of a datamap vertex.
type VertexKind string

const (
	KindIdentifier  VertexKind = "identifier"
	KindEnumeration VertexKind = "enumeration"
	KindInteger     VertexKind = "integer"
	KindFloat       VertexKind = "float"
	KindString      VertexKind = "string"
	KindForeign     VertexKind = "foreign"
)

// validKinds is the set of allowed vertex kinds.
var validKinds = map[VertexKind]bool{
	KindIdentifier:  true,
	KindEnumeration: true,
	KindInteger:     true,
	KindFloat:       true,
	KindString:      true,
	KindForeign:     true,
}

// ValidateKind returns an error if the kind is not recognized.
func ValidateKind(k VertexKind) error {
	if !validKinds[k] {
		return fmt.Errorf("invalid vertex kind %q: must be one of: identifier, enumeration, integer, float, string, foreign", k)
	}
	return nil
}

// --- Core data structures ---

// OutEdge is a named, directed connection from an Identifier vertex to another
// vertex. It belongs to exactly one source vertex: the Edges slice it lives in.
type OutEdge struct {
	Name     string `json:"name"`
	TargetID string `json:"targetId"`
	Comment  string `json:"comment,omitempty"`
}

// Vertex is a single node in the schema graph. Which optional fields are
// meaningful depends on Kind:
//
//   - Identifier: Edges (absence means "no edges yet", not "cannot have edges")
//   - Enumeration: Choices (ordered, non-empty)
//   - Integer / Float: Min and Max (optional range bounds)
//   - Foreign: ForeignMap and ForeignID (opaque reference into another datamap)
//   - String: no extra data
type Vertex struct {
	ID   string     `json:"id"`
	Kind VertexKind `json:"kind"`

	Edges   []OutEdge `json:"outEdges,omitempty"`
	Choices []string  `json:"choices,omitempty"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`

	// Foreign vertices reference an externally loaded datamap. The core
	// treats them as opaque: no traversal crosses a foreign boundary.
	ForeignMap string `json:"foreignMap,omitempty"`
	ForeignID  string `json:"importedId,omitempty"`
}

// Edge returns the outgoing edge with the given name and target, or nil.
// Name alone is not a key: linked attributes may share a name on one parent.
func (v *Vertex) Edge(name, targetID string) *OutEdge {
	for i := range v.Edges {
		if v.Edges[i].Name == name && v.Edges[i].TargetID == targetID {
			return &v.Edges[i]
		}
	}
	return nil
}

// HasEdgeNamed reports whether the vertex has any outgoing edge with the name.
func (v *Vertex) HasEdgeNamed(name string) bool {
	for i := range v.Edges {
		if v.Edges[i].Name == name {
			return true
		}
	}
	return false
}

// --- Attribute name validation ---

// attrNameRe matches legal Soar attribute names: a leading letter or digit
// followed by letters, digits, hyphens, underscores or asterisks. Dots are
// excluded because they separate path segments.
var attrNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_*-]*$`)

// ValidateAttributeName returns an error if name is not a legal attribute label.
func ValidateAttributeName(name string) error {
	if name == "" {
		return fmt.Errorf("attribute name is empty")
	}
	if !attrNameRe.MatchString(name) {
		return fmt.Errorf("invalid attribute name %q: must start with a letter or digit and contain only letters, digits, '-', '_' or '*'", name)
	}
	return nil
}
