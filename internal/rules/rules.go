// Package rules defines the data contracts between the production parser,
// the path validator, and the host: parsed rule facts going in, diagnostics
// coming out. It holds no behavior beyond small syntactic helpers.
package rules

import "strings"

// Position is a zero-based line/character location in a source file.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open source span from Start (inclusive) to End (exclusive).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// AttributeTest is one attribute condition or action inside a production:
// `^name value`, possibly negated, possibly with a dotted path name.
// ParentVariable is the variable the test hangs off (e.g. "<s>"); it is
// empty when the parser could not determine one.
type AttributeTest struct {
	Name           string `json:"name"`
	Value          string `json:"value,omitempty"`
	IsNegated      bool   `json:"isNegated,omitempty"`
	ParentVariable string `json:"parentVariable,omitempty"`

	// Range spans the attribute name; ValueRange spans the value token, so
	// enumeration findings can point at the offending literal exactly.
	Range      Range `json:"range"`
	ValueRange Range `json:"valueRange,omitempty"`
}

// Production is a single Soar rule with its attribute tests in source order.
type Production struct {
	Name string `json:"name"`
	// StateVariable is the variable bound by the `(state <x> ...)` head
	// condition; empty when the production has none.
	StateVariable string          `json:"stateVariable,omitempty"`
	Tests         []AttributeTest `json:"tests"`
	Range         Range           `json:"range"`
}

// Document is a parsed rule file.
type Document struct {
	Path        string       `json:"path,omitempty"`
	Productions []Production `json:"productions"`
}

// --- Diagnostics ---

// Severity classifies a diagnostic. Unknown attributes and invalid
// enumeration values are errors, not warnings: they break the Soar
// interpreter's load step downstream.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one validation finding attached to a precise source range.
type Diagnostic struct {
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
}

// IsVariable reports whether a token is a Soar variable like "<s>".
func IsVariable(tok string) bool {
	return len(tok) > 2 && strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">")
}
