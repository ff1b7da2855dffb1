package parser

import "soarmap/internal/rules"

// --- Token scanner ---
//
// The scanner splits production source into positioned tokens. It knows just
// enough Soar syntax to keep attribute paths (`^io.input-link`), variables
// (`<s>`), disjunction fences (`<< >>`) and the arrow (`-->`) intact; every
// other maximal run of non-delimiter runes is a word.

type tokKind int

const (
	tokWord tokKind = iota // attributes, variables, constants, numbers
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokDisjOpen  // <<
	tokDisjClose // >>
	tokArrow     // -->
	tokEOF
)

type token struct {
	kind  tokKind
	text  string
	start rules.Position
	end   rules.Position
}

type scanner struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newScanner(src string) *scanner {
	return &scanner{src: []rune(src)}
}

func (s *scanner) here() rules.Position {
	return rules.Position{Line: s.line, Character: s.col}
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(offset int) rune {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *scanner) advance() rune {
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	return r
}

// skipIgnored consumes whitespace, # comments and quoted documentation
// strings, none of which carry validation-relevant facts.
func (s *scanner) skipIgnored() {
	for s.pos < len(s.src) {
		switch r := s.peek(); {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			s.advance()
		case r == '#':
			for s.pos < len(s.src) && s.peek() != '\n' {
				s.advance()
			}
		case r == '"':
			s.advance()
			for s.pos < len(s.src) && s.peek() != '"' {
				s.advance()
			}
			if s.pos < len(s.src) {
				s.advance()
			}
		default:
			return
		}
	}
}

// isDelimiter reports whether the rune ends a word.
func isDelimiter(r rune) bool {
	switch r {
	case 0, ' ', '\t', '\r', '\n', '(', ')', '{', '}', '#', '"':
		return true
	}
	return false
}

func (s *scanner) next() token {
	s.skipIgnored()
	start := s.here()
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, start: start, end: start}
	}

	switch r := s.peek(); r {
	case '(':
		s.advance()
		return token{kind: tokLParen, text: "(", start: start, end: s.here()}
	case ')':
		s.advance()
		return token{kind: tokRParen, text: ")", start: start, end: s.here()}
	case '{':
		s.advance()
		return token{kind: tokLBrace, text: "{", start: start, end: s.here()}
	case '}':
		s.advance()
		return token{kind: tokRBrace, text: "}", start: start, end: s.here()}
	case '<':
		if s.peekAt(1) == '<' {
			s.advance()
			s.advance()
			return token{kind: tokDisjOpen, text: "<<", start: start, end: s.here()}
		}
		// Variable `<name>` or a bare comparator like `<` / `<=` / `<=>`.
		return s.word(start)
	case '>':
		if s.peekAt(1) == '>' {
			s.advance()
			s.advance()
			return token{kind: tokDisjClose, text: ">>", start: start, end: s.here()}
		}
		return s.word(start)
	case '-':
		if s.peekAt(1) == '-' && s.peekAt(2) == '>' {
			s.advance()
			s.advance()
			s.advance()
			return token{kind: tokArrow, text: "-->", start: start, end: s.here()}
		}
		return s.word(start)
	case '|':
		// Pipe-quoted string constant; kept as one word including pipes.
		var text []rune
		text = append(text, s.advance())
		for s.pos < len(s.src) && s.peek() != '|' {
			text = append(text, s.advance())
		}
		if s.pos < len(s.src) {
			text = append(text, s.advance())
		}
		return token{kind: tokWord, text: string(text), start: start, end: s.here()}
	}
	return s.word(start)
}

// word consumes a maximal run of non-delimiter runes. A variable keeps its
// closing '>' even though standalone '>' would end a word.
func (s *scanner) word(start rules.Position) token {
	var text []rune
	for s.pos < len(s.src) && !isDelimiter(s.peek()) {
		r := s.peek()
		if r == '<' && len(text) > 0 && text[0] != '<' {
			break // a new variable starts; end the current word
		}
		text = append(text, s.advance())
		if r == '>' && len(text) > 0 && text[0] == '<' {
			break // variable closed
		}
	}
	return token{kind: tokWord, text: string(text), start: start, end: s.here()}
}
