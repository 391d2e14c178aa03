// Package analyzer recovers indentation facts from Python source text in a
// single forward pass over its lines.
//
// The scan is shallow and only correct for reasonably well-formed code.
// Input like "[0, (1, 2])" produces a best-effort result.
package analyzer

import (
	"pyindent/internal/domain"
)

// Revision changes whenever the scan can produce different results for the
// same input. Persisted lint reports are keyed on it.
const Revision = 1

// Scanner consumes lines one at a time. The zero value is not usable; call
// NewScanner.
type Scanner struct {
	state lexState
	row   int
	acc   domain.ParseResult
}

func NewScanner() *Scanner {
	return &Scanner{
		acc: domain.ParseResult{OpenBracketStack: []domain.Position{}},
	}
}

// Push scans the next line. The line must not contain its line terminator,
// although a trailing '\r' or '\n' is harmless.
func (s *Scanner) Push(line string) {
	row := s.row
	s.row++

	s.acc.DedentNext = !s.state.inString() && isDedentTrigger(line)
	// Also runs inside strings, so a docstring line starting with "if" is
	// recorded as an if.
	matchIndenter(line).record(&s.acc.LastSeenIndenters, row)

	s.state = s.scanLine(s.state.startLine(), row, line)
}

// scanLine runs the lexical state machine over one line and returns the
// state to carry into the next one.
func (s *Scanner) scanLine(st lexState, row int, line string) lexState {
	// Whether the last substantive rune of the line was a colon. A colon
	// followed by anything else (dict literal, annotation, lambda) does not
	// open a block.
	colonLast := false

	col := -1
	for _, c := range line {
		col++

		st = st.resolve(c)
		if st.inString() {
			st = st.consume(c)
			continue
		}

		if isOpenBracket(c) {
			// Only whitespace may follow for a hanging indent; any other
			// rune flips this back.
			s.acc.CanHang = true
			s.acc.OpenBracketStack = append(s.acc.OpenBracketStack, domain.Position{Row: row, Col: col})
			continue
		}
		if isInert(c) {
			continue
		}
		if c == '#' {
			break
		}

		s.acc.CanHang = false
		colonLast = c == ':'

		switch {
		case isCloseBracket(c):
			s.closeBracket(row)
		case isQuote(c):
			st = openString(c)
		}
	}

	if colonLast {
		r := row
		s.acc.LastColonRow = &r
	}
	return st
}

func (s *Scanner) closeBracket(row int) {
	n := len(s.acc.OpenBracketStack)
	if n == 0 {
		return
	}
	opened := s.acc.OpenBracketStack[n-1]
	s.acc.OpenBracketStack = s.acc.OpenBracketStack[:n-1]

	// A pair closed on its own line says nothing about where the next line
	// goes, and would hide an earlier multi-line pair such as
	//
	//	(api
	//	 .doSomething()
	//	 ).finish()
	if opened.Row != row {
		s.acc.LastClosedBracket = &domain.BracketSpan{Open: opened.Row, Close: row}
	}
}

// Result returns the facts gathered so far. The returned value does not
// change when more lines are pushed.
func (s *Scanner) Result() domain.ParseResult {
	res := s.acc
	res.OpenBracketStack = make([]domain.Position, len(s.acc.OpenBracketStack))
	copy(res.OpenBracketStack, s.acc.OpenBracketStack)
	return res
}

// InString reports whether the next line would start inside a string literal.
func (s *Scanner) InString() bool {
	return s.state.inString()
}

// Rows returns the number of lines pushed.
func (s *Scanner) Rows() int {
	return s.row
}

// ParseLines scans lines from the first to the last and returns what it
// found. It never fails: unmatched closers are ignored and an unterminated
// string simply stays open.
func ParseLines(lines []string) domain.ParseResult {
	s := NewScanner()
	for _, line := range lines {
		s.Push(line)
	}
	return s.Result()
}

// Parser adapts ParseLines to port.LineParser.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(lines []string) domain.ParseResult {
	return ParseLines(lines)
}
