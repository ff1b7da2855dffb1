// Package validate resolves attribute paths and variable bindings from
// parsed rule documents against a datamap graph, reporting unknown
// attributes and invalid enumeration values as ranged diagnostics.
//
// The validator is a pure function of (document, graph): it never mutates
// the graph and keeps no state across calls, so it may run concurrently
// with other readers of the same snapshot.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"soarmap/internal/datamap"
	"soarmap/internal/rules"
)

// DefaultStateVariable is the conventional state variable bound to the
// datamap root when a production names none.
const DefaultStateVariable = "<s>"

// Validator checks rule documents against one graph snapshot.
type Validator struct {
	graph *datamap.Graph
	index datamap.Index
}

// New creates a validator over a graph snapshot. The snapshot must not be
// mutated while validation runs.
func New(g *datamap.Graph) *Validator {
	return &Validator{graph: g, index: g.BuildIndex()}
}

// ValidateDocument checks every production and returns all findings.
func (v *Validator) ValidateDocument(doc *rules.Document) []rules.Diagnostic {
	var diags []rules.Diagnostic
	for i := range doc.Productions {
		diags = append(diags, v.validateProduction(&doc.Productions[i])...)
	}
	return diags
}

func (v *Validator) validateProduction(p *rules.Production) []rules.Diagnostic {
	bindings := v.bindVariables(p)

	var diags []rules.Diagnostic
	for _, test := range p.Tests {
		segments := strings.Split(test.Name, ".")

		// Existence is checked against the whole graph, not the binding
		// context: binding inference is incomplete by design, and a global
		// check avoids false positives at the cost of missing some
		// context-specific mistakes. Negated tests assert absence, so a
		// missing path is not a finding for them.
		if !test.IsNegated && !v.existsAnywhere(segments) {
			diags = append(diags, rules.Diagnostic{
				Message:  v.notFoundMessage(segments),
				Range:    test.Range,
				Severity: rules.SeverityError,
			})
			continue
		}

		if test.Value != "" && !rules.IsVariable(test.Value) {
			if d := v.checkEnumeration(bindings, &test); d != nil {
				diags = append(diags, *d)
			}
		}
	}
	return diags
}

// --- Variable binding pass ---

// bindVariables seeds the state variable with the root vertex and then
// propagates bindings through attribute tests whose value is a variable:
// every vertex reachable from the parent's binding along the test's path
// joins the value variable's binding set.
func (v *Validator) bindVariables(p *rules.Production) map[string]map[string]bool {
	stateVar := p.StateVariable
	if stateVar == "" {
		stateVar = DefaultStateVariable
	}
	bindings := map[string]map[string]bool{
		stateVar: {v.graph.RootID: true},
	}

	for _, test := range p.Tests {
		if !rules.IsVariable(test.Value) || test.ParentVariable == "" {
			continue
		}
		from, bound := bindings[test.ParentVariable]
		if !bound {
			continue
		}
		targets := v.navigate(from, strings.Split(test.Name, "."))
		if len(targets) == 0 {
			continue
		}
		set := bindings[test.Value]
		if set == nil {
			set = make(map[string]bool)
			bindings[test.Value] = set
		}
		for id := range targets {
			set[id] = true
		}
	}
	return bindings
}

// navigate walks a dotted path from a set of starting vertices, collecting
// every vertex reachable by matching edge names at each segment. Multiple
// edges sharing a name at one level all contribute (fan-out).
func (v *Validator) navigate(from map[string]bool, segments []string) map[string]bool {
	current := from
	for _, seg := range segments {
		next := make(map[string]bool)
		for id := range current {
			vertex, ok := v.index[id]
			if !ok || vertex.Kind != datamap.KindIdentifier {
				continue
			}
			for _, e := range vertex.Edges {
				if e.Name == seg {
					next[e.TargetID] = true
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// --- Existence check ---

// existsAnywhere reports whether the dotted path can be navigated to
// completion starting from any vertex in the graph that has an edge named
// like the first segment.
func (v *Validator) existsAnywhere(segments []string) bool {
	starts := make(map[string]bool)
	for _, vertex := range v.graph.Vertices {
		if vertex.Kind == datamap.KindIdentifier && vertex.HasEdgeNamed(segments[0]) {
			starts[vertex.ID] = true
		}
	}
	if len(starts) == 0 {
		return false
	}
	return len(v.navigate(starts, segments)) > 0
}

// notFoundMessage renders an unknown-attribute error, appending fuzzy
// suggestions for the first unknown segment when any are close enough.
func (v *Validator) notFoundMessage(segments []string) string {
	msg := fmt.Sprintf("attribute %q not found in the datamap", strings.Join(segments, "."))

	// Find the first segment that has no edge anywhere; that's the one
	// worth suggesting alternatives for.
	unknown := segments[0]
	for _, seg := range segments {
		if !v.edgeNameExists(seg) {
			unknown = seg
			break
		}
	}
	if suggestions := Suggestions(v.graph, unknown, 3); len(suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(suggestions, ", "))
	}
	return msg
}

func (v *Validator) edgeNameExists(name string) bool {
	for _, vertex := range v.graph.Vertices {
		if vertex.HasEdgeNamed(name) {
			return true
		}
	}
	return false
}

// --- Enumeration check ---

// checkEnumeration validates a literal value against the enumerations
// reachable by navigating the test's path from the vertices bound to its
// parent variable (the root when the parent is unbound). A path that
// reaches no enumeration is simply not enum-constrained.
func (v *Validator) checkEnumeration(bindings map[string]map[string]bool, test *rules.AttributeTest) *rules.Diagnostic {
	from := bindings[test.ParentVariable]
	if len(from) == 0 {
		from = map[string]bool{v.graph.RootID: true}
	}

	targets := v.navigate(from, strings.Split(test.Name, "."))

	choiceSet := make(map[string]bool)
	constrained := false
	for id := range targets {
		vertex, ok := v.index[id]
		if !ok || vertex.Kind != datamap.KindEnumeration {
			continue
		}
		constrained = true
		for _, c := range vertex.Choices {
			if c == test.Value {
				return nil // at least one reachable enumeration accepts it
			}
			choiceSet[c] = true
		}
	}
	if !constrained {
		return nil
	}

	// The same path may lead to different enumerations in different
	// structural contexts, so the message lists the union of all choices.
	choices := make([]string, 0, len(choiceSet))
	for c := range choiceSet {
		choices = append(choices, c)
	}
	sort.Strings(choices)

	rng := test.ValueRange
	if rng == (rules.Range{}) {
		rng = test.Range
	}
	return &rules.Diagnostic{
		Message:  fmt.Sprintf("value %q is not valid for attribute %q (valid choices: %s)", test.Value, test.Name, strings.Join(choices, ", ")),
		Range:    rng,
		Severity: rules.SeverityError,
	}
}
