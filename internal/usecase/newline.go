package usecase

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"pyindent/internal/domain"
	"pyindent/internal/port"
)

var (
	ErrCursorOutOfRange = errors.New("cursor out of range")
	ErrInvalidTabSize   = errors.New("tab size must be positive")
)

// NewlineOptions mirror the editor settings that shape a newline.
type NewlineOptions struct {
	TrimLinesWithOnlyWhitespace bool `json:"trimLinesWithOnlyWhitespace" yaml:"trim_whitespace_only_lines"`
	UseTabOnHangingIndent       bool `json:"useTabOnHangingIndent" yaml:"use_tab_on_hanging_indent"`
	KeepHangingBracketOnLine    bool `json:"keepHangingBracketOnLine" yaml:"keep_hanging_bracket_on_line"`
}

// NewlineRequest describes a newline key press. Lines is the whole buffer,
// or at least every line up to the cursor row.
type NewlineRequest struct {
	Lines   []string        `json:"lines"`
	Cursor  domain.Position `json:"cursor"`
	TabSize int             `json:"tabSize"`
	Options NewlineOptions  `json:"options"`
}

// NewlineUseCase turns indentation facts into the edit a "newline and
// indent" command applies.
type NewlineUseCase struct {
	parser port.LineParser
}

func NewNewlineUseCase(parser port.LineParser) *NewlineUseCase {
	return &NewlineUseCase{parser: parser}
}

// Plan computes the edit for req.
func (u *NewlineUseCase) Plan(req NewlineRequest) (domain.Edit, error) {
	if req.TabSize <= 0 {
		return domain.Edit{}, ErrInvalidTabSize
	}
	row, col := req.Cursor.Row, req.Cursor.Col
	if row < 0 || row >= len(req.Lines) {
		return domain.Edit{}, fmt.Errorf("%w: row %d of %d lines", ErrCursorOutOfRange, row, len(req.Lines))
	}
	currentLine := req.Lines[row]
	lineLen := utf8.RuneCountInString(currentLine)
	if col < 0 || col > lineLen {
		return domain.Edit{}, fmt.Errorf("%w: column %d of %d", ErrCursorOutOfRange, col, lineLen)
	}

	// The indenter only sees text before the cursor.
	runes := []rune(currentLine)
	lines := make([]string, row+1)
	copy(lines, req.Lines[:row])
	lines[row] = string(runes[:col])

	indent, res := IndentationInfo(u.parser, lines, req.TabSize)
	var deletes []domain.Range

	// "def f(x,| y):" drops the whitespace right of the cursor, as long as
	// there is something left of it.
	if trailing := StartingWhitespaceLength(string(runes[col:])); trailing > 0 && strings.IndexFunc(lines[row], notSpace) >= 0 {
		deletes = append(deletes, domain.Range{
			Start: domain.Position{Row: row, Col: col},
			End:   domain.Position{Row: row, Col: col + trailing},
		})
	}

	dedent := CurrentLineDedentation(u.parser, lines, req.TabSize)
	trim := TrimCurrentLine(lines[row], req.Options.TrimLinesWithOnlyWhitespace)
	if dedent > 0 || trim {
		amount := dedent
		if trim {
			amount = col
		}
		deletes = append(deletes, domain.Range{
			Start: domain.Position{Row: row, Col: 0},
			End:   domain.Position{Row: row, Col: amount},
		})
		indent -= dedent
	}
	indent = max(indent, 0)

	hanging := domain.HangingNone
	if res.CanHang {
		hanging = ShouldHang(currentLine, col)
	}
	if req.Options.KeepHangingBracketOnLine && hanging == domain.HangingFull {
		hanging = domain.HangingPartial
	}

	edit := domain.Edit{Deletes: deletes, Hanging: hanging}
	base := IndentationLevel(currentLine)

	switch hanging {
	case domain.HangingFull:
		inner := "\n" + strings.Repeat(" ", base+req.TabSize)
		edit.Insert = inner + "\n" + strings.Repeat(" ", base)
		edit.Cursor = utf8.RuneCountInString(inner)
		stop := "$0"
		if req.Options.UseTabOnHangingIndent {
			stop = "$1"
		}
		edit.Snippet = inner + stop + "\n" + strings.Repeat(" ", base)
		return edit, nil
	case domain.HangingPartial:
		edit.Insert = "\n" + strings.Repeat(" ", base+req.TabSize)
	default:
		edit.Insert = "\n" + strings.Repeat(" ", indent)
	}

	if ExtendCommentToNextLine(currentLine, col) {
		edit.Insert += "# "
	}
	edit.Cursor = utf8.RuneCountInString(edit.Insert)
	return edit, nil
}

func notSpace(r rune) bool {
	return !unicode.IsSpace(r)
}
