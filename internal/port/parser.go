package port

import "pyindent/internal/domain"

// LineParser turns an ordered run of lines into the facts the indenter needs.
type LineParser interface {
	Parse(lines []string) domain.ParseResult
}
