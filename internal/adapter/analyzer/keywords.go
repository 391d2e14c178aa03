package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pyindent/internal/domain"
)

// Lines starting with one of these end a block, so the line after them
// should be dedented.
var dedentKeywords = []string{"return", "pass", "break", "continue", "raise"}

type indenterFamily int

const (
	noIndenter indenterFamily = iota
	ifIndenter
	forIndenter
	tryIndenter
	whileIndenter
)

// Checked in order; the first prefix that matches wins.
var indenterPrefixes = []struct {
	prefix string
	family indenterFamily
}{
	{"if", ifIndenter},
	{"for", forIndenter},
	{"try", tryIndenter},
	{"while", whileIndenter},
}

func trimIndent(line string) string {
	return strings.TrimLeftFunc(line, unicode.IsSpace)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isDedentTrigger reports whether the line starts, after its indentation,
// with a dedent keyword followed by a word boundary. "return_value = 1"
// does not count.
func isDedentTrigger(line string) bool {
	trimmed := trimIndent(line)
	for _, kw := range dedentKeywords {
		if !strings.HasPrefix(trimmed, kw) {
			continue
		}
		rest := trimmed[len(kw):]
		if rest == "" {
			return true
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if !isWordRune(r) {
			return true
		}
	}
	return false
}

// matchIndenter returns the keyword family the line starts with. This is a
// plain prefix test: "iffy()" counts as an if.
func matchIndenter(line string) indenterFamily {
	trimmed := trimIndent(line)
	for _, p := range indenterPrefixes {
		if strings.HasPrefix(trimmed, p.prefix) {
			return p.family
		}
	}
	return noIndenter
}

func (f indenterFamily) record(ind *domain.Indenters, row int) {
	r := row
	switch f {
	case ifIndenter:
		ind.If = &r
	case forIndenter:
		ind.For = &r
	case tryIndenter:
		ind.Try = &r
	case whileIndenter:
		ind.While = &r
	}
}
