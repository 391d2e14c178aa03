package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyindent/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestParseLines_EmptyInput(t *testing.T) {
	res := ParseLines(nil)

	assert.False(t, res.CanHang)
	assert.False(t, res.DedentNext)
	assert.Nil(t, res.LastClosedBracket)
	assert.Nil(t, res.LastColonRow)
	assert.NotNil(t, res.OpenBracketStack)
	assert.Empty(t, res.OpenBracketStack)
	assert.Equal(t, domain.Indenters{}, res.LastSeenIndenters)
}

func TestParseLines_BracketStackIsLIFO(t *testing.T) {
	res := ParseLines([]string{
		"x = ([",
		"]",
	})

	assert.Equal(t, []domain.Position{{Row: 0, Col: 4}}, res.OpenBracketStack)
	require.NotNil(t, res.LastClosedBracket)
	assert.Equal(t, domain.BracketSpan{Open: 0, Close: 1}, *res.LastClosedBracket)
}

func TestParseLines_StackDepth(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		depth int
	}{
		{"balanced", []string{"f(a[1], {2: 3})"}, 0},
		{"one open", []string{"f(a[1],"}, 1},
		{"nested open", []string{"[[[0, 1, 2,"}, 3},
		{"across lines", []string{"[0,", " [1,", "  2],"}, 1},
		{"unmatched closers", []string{")]}"}, 0},
		{"closer then opener", []string{")", "("}, 1},
		{"brackets in string", []string{"x = '(['"}, 0},
		{"brackets in comment", []string{"x = 1  # (["}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseLines(tt.lines)
			assert.Len(t, res.OpenBracketStack, tt.depth)
		})
	}
}

func TestParseLines_UnmatchedCloserIsIgnored(t *testing.T) {
	res := ParseLines([]string{")]}", "x = 1"})

	assert.Empty(t, res.OpenBracketStack)
	assert.Nil(t, res.LastClosedBracket)
}

func TestParseLines_LastClosedBracket(t *testing.T) {
	res := ParseLines([]string{
		"def f(api):",
		"    (api",
		"     .doSomething()",
		"     ).finish()",
	})

	require.NotNil(t, res.LastClosedBracket)
	assert.Equal(t, domain.BracketSpan{Open: 1, Close: 3}, *res.LastClosedBracket)
	assert.Empty(t, res.OpenBracketStack)
}

func TestParseLines_SameRowPairNotRecorded(t *testing.T) {
	res := ParseLines([]string{"f(x)"})
	assert.Nil(t, res.LastClosedBracket)

	// A same-row pair must not hide an earlier multi-line one.
	res = ParseLines([]string{
		"foo(a,",
		"    b)",
		"bar(c)",
	})
	require.NotNil(t, res.LastClosedBracket)
	assert.Equal(t, domain.BracketSpan{Open: 0, Close: 1}, *res.LastClosedBracket)
}

func TestParseLines_StringDoesNotLeak(t *testing.T) {
	s := NewScanner()
	s.Push(`foo = "it's here"`)
	assert.False(t, s.InString())

	s.Push("return foo")
	assert.True(t, s.Result().DedentNext)
}

func TestParseLines_TripleQuotedStringSpansLines(t *testing.T) {
	s := NewScanner()
	s.Push("f(")
	s.Push("x = '''")
	assert.True(t, s.InString())

	s.Push(") still in string''' )")
	assert.False(t, s.InString())

	res := s.Result()
	assert.Empty(t, res.OpenBracketStack)
	require.NotNil(t, res.LastClosedBracket)
	assert.Equal(t, domain.BracketSpan{Open: 0, Close: 2}, *res.LastClosedBracket)
}

func TestParseLines_StringStates(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		inString bool
	}{
		{"simple", []string{`s = 'abc'`}, false},
		{"unterminated", []string{`s = 'abc`}, true},
		{"empty string mid line", []string{`s = '' + t`}, false},
		{"empty double quoted", []string{`s = "" + t`}, false},
		{"six quotes", []string{`s = ''''''`}, false},
		{"triple open", []string{`s = """`}, true},
		{"triple closed same line", []string{`s = """doc"""`}, false},
		{"triple closed later", []string{`s = """`, `doc`, `"""`}, false},
		{"other delimiter inside", []string{`s = "it's"`}, false},
		{"single inside triple", []string{`s = '''a " b ' c'''`}, false},
		{"escaped quote", []string{`s = 'it\'s'`}, false},
		{"escaped backslash", []string{`s = "a\\"`}, false},
		{"escaped backslash then quote open", []string{`s = "a\\\"`}, true},
		{"quote in comment", []string{`x = 1  # it's`}, false},
		{"raw string with escaped quote", []string{`r'some \[\'[raw'`}, false},
		{"escaped triple delimiter", []string{`s = '''a\'''`, `'''`}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner()
			for _, line := range tt.lines {
				s.Push(line)
			}
			assert.Equal(t, tt.inString, s.InString())
		})
	}
}

func TestParseLines_EmptyStringResolvedByNextRune(t *testing.T) {
	// The bracket after '' is outside the string.
	res := ParseLines([]string{`x = ''(`})
	assert.Equal(t, []domain.Position{{Row: 0, Col: 6}}, res.OpenBracketStack)

	// The other delimiter right after '' starts a new string.
	s := NewScanner()
	s.Push(`x = ''"(`)
	assert.True(t, s.InString())
	assert.Empty(t, s.Result().OpenBracketStack)
}

func TestParseLines_EscapeOnlyInsideStrings(t *testing.T) {
	res := ParseLines([]string{`x = a \ (`})
	assert.Len(t, res.OpenBracketStack, 1)
}

func TestParseLines_DedentNext(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		dedent bool
	}{
		{"return with comment", []string{"return x  # comment"}, true},
		{"bare return", []string{"    return"}, true},
		{"pass", []string{"pass"}, true},
		{"break", []string{"\tbreak"}, true},
		{"continue", []string{"continue  "}, true},
		{"raise call", []string{"raise ValueError('x')"}, true},
		{"return paren", []string{"return(x)"}, true},
		{"identifier prefix", []string{"return_value = 1"}, false},
		{"identifier prefix pass", []string{"passenger = 1"}, false},
		{"unicode identifier", []string{"returné = 1"}, false},
		{"keyword later in line", []string{"x = return"}, false},
		{"keyword in argument", []string{"def function(raise_error=False):"}, false},
		{"not sticky", []string{"return x", "y = 1"}, false},
		{"inside triple string", []string{"'''", "return"}, false},
		{"after triple string", []string{"'''", "'''", "return"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dedent, ParseLines(tt.lines).DedentNext)
		})
	}
}

func TestParseLines_LastColonRow(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  *int
	}{
		{"if", []string{"if x:"}, intPtr(0)},
		{"if with comment", []string{"if x:  # why"}, intPtr(0)},
		{"def", []string{"def f(x):"}, intPtr(0)},
		{"dict literal", []string{"d = {1: 2}"}, nil},
		{"annotation", []string{"def function(x: int,"}, nil},
		{"slice", []string{"y = x[1:]"}, nil},
		{"colon in string", []string{"s = 'a:'"}, nil},
		{"dict keeps earlier row", []string{"if x:", "    d = {1: 2}"}, intPtr(0)},
		{"later block wins", []string{"if x:", "    y = 1", "else:"}, intPtr(2)},
		{"colon after open bracket", []string{"foo = {1:"}, intPtr(0)},
		{"closed signature", []string{"def function(x,", "             y):"}, intPtr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLines(tt.lines).LastColonRow)
		})
	}
}

func TestParseLines_CanHang(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  bool
	}{
		{"open bracket at end", []string{"foo("}, true},
		{"trailing whitespace", []string{"foo(  \t"}, true},
		{"trailing comment", []string{"foo(  # note"}, true},
		{"argument after bracket", []string{"foo(x"}, false},
		{"closed", []string{"foo()"}, false},
		{"string after bracket", []string{"foo('a'"}, false},
		{"blank line after bracket", []string{"foo(", "   "}, true},
		{"empty", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLines(tt.lines).CanHang)
		})
	}
}

func TestParseLines_Indenters(t *testing.T) {
	res := ParseLines([]string{
		"if x:",
		"    for i in y:",
		"        try:",
		"            while True:",
		"                pass",
		"        except E:",
		"  iffy()",
	})

	assert.Equal(t, intPtr(6), res.LastSeenIndenters.If)
	assert.Equal(t, intPtr(1), res.LastSeenIndenters.For)
	assert.Equal(t, intPtr(2), res.LastSeenIndenters.Try)
	assert.Equal(t, intPtr(3), res.LastSeenIndenters.While)
}

func TestParseLines_IndentersInsideString(t *testing.T) {
	res := ParseLines([]string{
		`"""`,
		`if this docstring starts with a keyword`,
		`"""`,
	})
	assert.Equal(t, intPtr(1), res.LastSeenIndenters.If)
}

func TestParseLines_UnicodeColumns(t *testing.T) {
	res := ParseLines([]string{"名前 = ("})
	assert.Equal(t, []domain.Position{{Row: 0, Col: 5}}, res.OpenBracketStack)
}

func TestParseLines_Idempotent(t *testing.T) {
	lines := []string{
		"class A:",
		"    def f(self, x: int,",
		"          y='''",
		"if not here: (",
		"''', z={1: 2}):",
		"        return [x,",
	}

	assert.Equal(t, ParseLines(lines), ParseLines(lines))
}

func TestScanner_ResultIsSnapshot(t *testing.T) {
	s := NewScanner()
	s.Push("x = [")
	res := s.Result()

	s.Push("    (")
	s.Push("]")

	assert.Equal(t, []domain.Position{{Row: 0, Col: 4}}, res.OpenBracketStack)
	assert.Nil(t, res.LastClosedBracket)
	assert.Equal(t, 3, s.Rows())
}

func TestParser_MatchesParseLines(t *testing.T) {
	lines := []string{"for i in range(5):", "    continue"}
	assert.Equal(t, ParseLines(lines), NewParser().Parse(lines))
}
