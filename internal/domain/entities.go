package domain

import (
	"fmt"
	"time"
)

// Position is a character location: zero-based row and rune column.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// BracketSpan records the rows of a bracket pair that opened and closed on
// different lines.
type BracketSpan struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// Indenters holds the row of the most recent line starting with each
// block-opening keyword. Nil means the keyword has not been seen.
type Indenters struct {
	If    *int `json:"if"`
	For   *int `json:"for"`
	Try   *int `json:"try"`
	While *int `json:"while"`
}

// ParseResult is everything the scanner recovers from a run of lines.
type ParseResult struct {
	CanHang           bool         `json:"canHang"`
	DedentNext        bool         `json:"dedentNext"`
	LastClosedBracket *BracketSpan `json:"lastClosedBracket"`
	LastColonRow      *int         `json:"lastColonRow"`
	OpenBracketStack  []Position   `json:"openBracketStack"`
	LastSeenIndenters Indenters    `json:"lastSeenIndenters"`
}

// Hanging describes how a newline typed right after an opening bracket
// should be laid out.
//
//	HangingNone:    def f():|
//	HangingPartial: def f(|x):
//	HangingFull:    def f(|):
type Hanging int

const (
	HangingNone    Hanging = iota // no hanging indent
	HangingPartial                // indent the next line
	HangingFull                   // indent the next line and put the closing bracket on its own line
)

func (h Hanging) String() string {
	switch h {
	case HangingNone:
		return "none"
	case HangingPartial:
		return "partial"
	case HangingFull:
		return "full"
	default:
		return fmt.Sprintf("Hanging(%d)", int(h))
	}
}

func (h Hanging) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hanging) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*h = HangingNone
	case "partial":
		*h = HangingPartial
	case "full":
		*h = HangingFull
	default:
		return fmt.Errorf("unknown hanging mode %q", text)
	}
	return nil
}

// Range is a half-open span of text, End exclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Edit is what a "newline and indent" key press does to the buffer.
// Deletes are applied first, then Insert goes in at the cursor.
type Edit struct {
	Deletes []Range `json:"deletes"`
	Insert  string  `json:"insert"`
	// Cursor is the rune offset into Insert where the caret lands.
	Cursor  int     `json:"cursor"`
	Hanging Hanging `json:"hanging"`
	// Snippet is set for full hanging indents, with a tab stop at the caret.
	Snippet string `json:"snippet,omitempty"`
}

type Document struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Hash    string    `json:"hash"`
}

// Finding is one line whose indentation disagrees with the indenter.
type Finding struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Expected int    `json:"expected"`
	Actual   int    `json:"actual"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
}

type FileReport struct {
	Doc      Document  `json:"doc"`
	Lines    int       `json:"lines"`
	Findings []Finding `json:"findings"`
}

type LintSummary struct {
	FilesChecked int `json:"files_checked"`
	FilesCached  int `json:"files_cached"`
	FilesRemoved int `json:"files_removed"`
	Lines        int `json:"lines"`
	Findings     int `json:"findings"`
}
