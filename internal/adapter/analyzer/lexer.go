package analyzer

type stringMode uint8

const (
	outsideString stringMode = iota
	// inString is a string opened by a single delimiter.
	inString
	// awaitingTriple follows two delimiters in a row: either an empty
	// string or the start of a triple-quoted one. The next rune decides.
	awaitingTriple
	inTripleString
)

// lexState is the character-level state carried from one line to the next.
type lexState struct {
	mode  stringMode
	delim rune
	// run counts consecutive unescaped delimiters. Reset at every line start.
	run int
	// escaped marks the next rune inside a string as escaped. Reset at every
	// line start.
	escaped bool
}

func (s lexState) inString() bool {
	return s.mode != outsideString
}

// startLine clears the per-line counters and keeps the string state.
func (s lexState) startLine() lexState {
	s.run = 0
	s.escaped = false
	return s
}

// resolve settles a pending awaitingTriple decision for rune c. Anything but
// the same delimiter means the two delimiters were an empty string, so the
// scanner is back outside and c must be treated as ordinary input.
func (s lexState) resolve(c rune) lexState {
	if s.mode == awaitingTriple && c != s.delim {
		return lexState{}
	}
	return s
}

// consume advances the state by one rune while inside a string.
func (s lexState) consume(c rune) lexState {
	if s.escaped {
		s.escaped = false
		s.run = 0
		return s
	}
	if c != s.delim {
		s.run = 0
		// Raw strings do not really escape, but a backslash still keeps
		// the quote after it from closing the string, which is all that
		// matters here.
		s.escaped = c == '\\'
		return s
	}

	s.run++
	if s.mode == inTripleString {
		if s.run == 3 {
			return lexState{}
		}
		return s
	}

	switch s.run {
	case 3:
		// Reset so that '''''' closes again on the next three.
		s.mode = inTripleString
		s.run = 0
	case 2:
		s.mode = awaitingTriple
	case 1:
		return lexState{}
	}
	return s
}

// openString enters a string started by delimiter c.
func openString(c rune) lexState {
	return lexState{mode: inString, delim: c, run: 1}
}

func isQuote(c rune) bool {
	return c == '\'' || c == '"'
}

func isOpenBracket(c rune) bool {
	return c == '(' || c == '[' || c == '{'
}

func isCloseBracket(c rune) bool {
	return c == ')' || c == ']' || c == '}'
}

func isInert(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
