package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pyindent/internal/domain"
	"pyindent/internal/port"
)

// IndentationLevel returns the rune index of the first non-whitespace rune,
// or the rune length of the line when it is all whitespace.
func IndentationLevel(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			return n
		}
		n++
	}
	return n
}

// StartingWhitespaceLength is like IndentationLevel but returns 0 for
// whitespace-only lines.
func StartingWhitespaceLength(line string) int {
	n := IndentationLevel(line)
	if n == utf8.RuneCountInString(line) {
		return 0
	}
	return n
}

// NextIndentationLevel decides the indent of the line following lines,
// given what the scanner found in them. The result may be negative after a
// dedent trigger on an unindented line; callers clamp it.
func NextIndentationLevel(res domain.ParseResult, lines []string, tabSize int) int {
	if len(lines) == 0 {
		return 0
	}
	row := len(lines) - 1
	current := IndentationLevel(lines[row])
	stack := res.OpenBracketStack
	closed := res.LastClosedBracket
	colonHere := res.LastColonRow != nil && *res.LastColonRow == row

	if res.DedentNext && len(stack) == 0 {
		return current - tabSize
	}

	if len(stack) == 0 {
		if closed != nil && closed.Close == row {
			// Just closed a bracket: go back to the indent of the row that
			// opened it, plus one level if that also ended a block header.
			level := IndentationLevel(lines[closed.Open])
			if colonHere {
				level += tabSize
			}
			return level
		}
		if colonHere {
			return current + tabSize
		}
		return current
	}

	if colonHere {
		return current + tabSize
	}

	// Inside an open bracket from here on.
	open := stack[len(stack)-1]
	justOpened := open.Row == row
	justClosed := closed != nil && closed.Close == row
	closedInside := closed != nil && closed.Open > open.Row

	switch {
	case !justOpened && !justClosed:
		// Nothing on the last row changed the indent.
		return current
	case justClosed && closedInside:
		// A nested pair opened after the current bracket just closed; use
		// the indent of its opening row so hanging indents survive:
		//
		//	x = [
		//	    0, 1, 2, [3, 4, 5,
		//	              6, 7, 8],
		//	    9, 10, 11
		//	]
		return IndentationLevel(lines[closed.Open])
	default:
		return open.Col + 1
	}
}

// IndentationInfo parses lines and returns the next indentation level along
// with the parse result it was derived from.
func IndentationInfo(parser port.LineParser, lines []string, tabSize int) (int, domain.ParseResult) {
	res := parser.Parse(lines)
	return NextIndentationLevel(res, lines, tabSize), res
}

const (
	neutralHangRunes = ": \t\r"
	closingHangRunes = "])}"
)

// ShouldHang reports whether, and how much of, a hanging indent a newline
// typed at rune offset char of line should produce.
func ShouldHang(line string, char int) domain.Hanging {
	runes := []rune(line)
	if char <= 0 || len(runes) == 0 {
		return domain.HangingNone
	}
	if char > len(runes) {
		char = len(runes)
	}

	prev := runes[char-1]
	if prev == '\\' {
		// Explicit line continuation.
		return domain.HangingPartial
	}
	if !strings.ContainsRune("[({", prev) {
		return domain.HangingNone
	}

	// Full means the rest of the line is only closing brackets, possibly with
	// neutral runes around them.
	someRest := false
	onlyClosing := true
	for _, r := range runes[char:] {
		if strings.ContainsRune(neutralHangRunes, r) {
			continue
		}
		someRest = true
		if !strings.ContainsRune(closingHangRunes, r) {
			onlyClosing = false
		}
	}
	if someRest && onlyClosing {
		return domain.HangingFull
	}
	return domain.HangingPartial
}

// Block continuations and the openers they belong to.
var dedentCurrentKeywords = []struct {
	keyword string
	openers func(domain.Indenters) []*int
}{
	{"elif", func(i domain.Indenters) []*int { return []*int{i.If} }},
	{"else", func(i domain.Indenters) []*int { return []*int{i.If, i.For, i.Try, i.While} }},
	{"except", func(i domain.Indenters) []*int { return []*int{i.Try} }},
	{"finally", func(i domain.Indenters) []*int { return []*int{i.Try} }},
}

// CurrentLineDedentation returns how many columns the last line should lose
// so that an elif/else/except/finally header lines up with the block it
// continues. It never dedents past the most recent matching opener.
func CurrentLineDedentation(parser port.LineParser, lines []string, tabSize int) int {
	if len(lines) == 0 {
		return 0
	}
	line := lines[len(lines)-1]
	if continuationKeyword(line) == nil {
		return 0
	}
	prior := lines[:len(lines)-1]
	return lineDedentation(parser.Parse(prior), prior, line)
}

func continuationKeyword(line string) func(domain.Indenters) []*int {
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, ":") {
		return nil
	}
	for _, dk := range dedentCurrentKeywords {
		if strings.HasPrefix(trimmed, dk.keyword) {
			return dk.openers
		}
	}
	return nil
}

// lineDedentation is CurrentLineDedentation for a line that follows prior,
// with res already parsed from prior.
func lineDedentation(res domain.ParseResult, prior []string, line string) int {
	openers := continuationKeyword(line)
	if openers == nil {
		return 0
	}
	opener := -1
	for _, row := range openers(res.LastSeenIndenters) {
		if row != nil && *row > opener {
			opener = *row
		}
	}
	if opener < 0 || opener >= len(prior) {
		return 0
	}
	return max(IndentationLevel(line)-IndentationLevel(prior[opener]), 0)
}

// ExtendCommentToNextLine reports whether a newline at char splits a
// comment-only line, in which case the new line should continue the comment.
func ExtendCommentToNextLine(line string, char int) bool {
	if !strings.HasPrefix(strings.TrimSpace(line), "#") {
		return false
	}
	runes := []rune(line)
	if char < 0 || char > len(runes) {
		return false
	}
	before := strings.TrimSpace(string(runes[:char]))
	after := strings.TrimSpace(string(runes[char:]))
	return before != "" && after != ""
}

// TrimCurrentLine reports whether a whitespace-only line should be emptied
// before the newline goes in.
func TrimCurrentLine(line string, enabled bool) bool {
	return enabled && strings.TrimSpace(line) == ""
}
