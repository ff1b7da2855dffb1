// Package parser turns Soar production source text into the attribute-test
// facts the path validator consumes (see internal/rules).
//
// It is a fact extractor, not a full Soar front end: it understands enough
// of the production syntax to recover attribute paths, variable bindings,
// negation and value literals with exact source ranges, and it skips
// anything it cannot make sense of rather than failing the whole file.
package parser

import (
	"strings"

	"soarmap/internal/rules"
)

// ParseFile parses rule source into a document. It never returns an error:
// productions that cannot be parsed are skipped.
func ParseFile(path, src string) *rules.Document {
	p := &parser{s: newScanner(src)}
	doc := &rules.Document{Path: path}
	for {
		tok := p.next()
		if tok.kind == tokEOF {
			break
		}
		if tok.kind == tokWord && (tok.text == "sp" || tok.text == "gp") {
			if prod, ok := p.parseProduction(tok); ok {
				doc.Productions = append(doc.Productions, *prod)
			}
		}
	}
	return doc
}

// Parse parses rule source without an associated path.
func Parse(src string) *rules.Document {
	return ParseFile("", src)
}

type parser struct {
	s      *scanner
	peeked *token
}

func (p *parser) next() token {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t
	}
	return p.s.next()
}

func (p *parser) peek() token {
	if p.peeked == nil {
		t := p.s.next()
		p.peeked = &t
	}
	return *p.peeked
}

// parseProduction parses `sp { name ...body... }` starting from the `sp`
// token. Returns ok == false when the block is malformed.
func (p *parser) parseProduction(sp token) (*rules.Production, bool) {
	if p.peek().kind != tokLBrace {
		return nil, false
	}
	p.next() // consume {

	nameTok := p.next()
	if nameTok.kind != tokWord {
		p.skipBalanced(1)
		return nil, false
	}

	prod := &rules.Production{Name: nameTok.text}
	depth := 1 // inside the production braces

	for depth > 0 {
		tok := p.next()
		switch tok.kind {
		case tokEOF:
			return prod, len(prod.Tests) > 0 || prod.StateVariable != ""
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
		case tokArrow:
			// Conditions and actions carry the same attribute facts; no
			// mode switch is needed.
		case tokLParen:
			p.parseCondition(prod, false)
		case tokWord:
			if tok.text == "-" && p.peek().kind == tokLParen {
				p.next()
				p.parseCondition(prod, true)
			}
		}
	}

	prod.Range = rules.Range{Start: sp.start, End: p.s.here()}
	return prod, true
}

// skipBalanced consumes tokens until the brace depth returns to zero.
func (p *parser) skipBalanced(depth int) {
	for depth > 0 {
		switch p.next().kind {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
		case tokEOF:
			return
		}
	}
}

// parseCondition parses one parenthesized condition or action, starting
// just after its '('. negated marks tests from a `-( ... )` group.
func (p *parser) parseCondition(prod *rules.Production, negated bool) {
	condVar := ""

	// Optional head: `state <s>` / `impasse <i>` / `<o>`.
	if tok := p.peek(); tok.kind == tokWord {
		switch {
		case tok.text == "state" || tok.text == "impasse":
			p.next()
			if v := p.peek(); v.kind == tokWord && rules.IsVariable(v.text) {
				p.next()
				condVar = v.text
				if prod.StateVariable == "" && tok.text == "state" {
					prod.StateVariable = v.text
				}
			}
		case rules.IsVariable(tok.text):
			p.next()
			condVar = tok.text
		}
	}

	for {
		tok := p.next()
		switch tok.kind {
		case tokEOF, tokRParen:
			return
		case tokLParen:
			// Nested call (RHS function like `(+ <c> 1)`); not a fact source.
			p.skipParens(1)
		case tokWord:
			if strings.HasPrefix(tok.text, "^") || strings.HasPrefix(tok.text, "-^") {
				p.parseAttributeTest(prod, condVar, negated, tok)
			}
		}
	}
}

func (p *parser) skipParens(depth int) {
	for depth > 0 {
		switch p.next().kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		case tokEOF:
			return
		}
	}
}

// comparators and preference markers that may appear in value position but
// are not values.
var nonValueTokens = map[string]bool{
	"+": true, "-": true, "!": true, "~": true, "@": true, "=": true,
	"<": true, ">": true, "<=": true, ">=": true, "<>": true, "<=>": true,
}

// parseAttributeTest handles one `^path value...` group. attrTok is the
// whole attribute word including its `^` or `-^` marker.
func (p *parser) parseAttributeTest(prod *rules.Production, condVar string, groupNegated bool, attrTok token) {
	negated := groupNegated
	name := attrTok.text
	markerLen := 1
	if strings.HasPrefix(name, "-^") {
		negated = true
		markerLen = 2
	}
	name = name[markerLen:]

	nameRange := rules.Range{
		Start: rules.Position{Line: attrTok.start.Line, Character: attrTok.start.Character + markerLen},
		End:   attrTok.end,
	}

	// Paths with variable segments (e.g. `^operator.<o>`) cannot be checked
	// against the datamap; skip the whole test. The scanner splits such
	// paths at the variable, leaving a trailing dot on the name.
	usable := name != "" && !strings.Contains(name, "<") && !strings.HasSuffix(name, ".")

	emit := func(value string, valueRange rules.Range) {
		if !usable {
			return
		}
		prod.Tests = append(prod.Tests, rules.AttributeTest{
			Name:           name,
			Value:          value,
			IsNegated:      negated,
			ParentVariable: condVar,
			Range:          nameRange,
			ValueRange:     valueRange,
		})
	}

	emitted := false
	for {
		tok := p.peek()
		switch tok.kind {
		case tokWord:
			if strings.HasPrefix(tok.text, "^") || strings.HasPrefix(tok.text, "-^") {
				if !emitted {
					emit("", rules.Range{})
				}
				return
			}
			p.next()
			if nonValueTokens[tok.text] {
				continue
			}
			emit(tok.text, rules.Range{Start: tok.start, End: tok.end})
			emitted = true
		case tokDisjOpen:
			p.next()
			for {
				lit := p.next()
				if lit.kind == tokDisjClose || lit.kind == tokEOF {
					break
				}
				if lit.kind == tokWord && !nonValueTokens[lit.text] {
					emit(lit.text, rules.Range{Start: lit.start, End: lit.end})
					emitted = true
				}
			}
		case tokLBrace:
			// Conjunctive test `{ <x> value }`: every inner token tests the
			// same attribute.
			p.next()
			for {
				inner := p.next()
				if inner.kind == tokRBrace || inner.kind == tokEOF {
					break
				}
				if inner.kind == tokWord && !nonValueTokens[inner.text] {
					emit(inner.text, rules.Range{Start: inner.start, End: inner.end})
					emitted = true
				}
			}
		case tokLParen:
			// RHS function call in value position.
			p.next()
			p.skipParens(1)
			emitted = true
		default:
			if !emitted {
				emit("", rules.Range{})
			}
			return
		}
	}
}
