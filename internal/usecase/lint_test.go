package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyindent/config"
	"pyindent/internal/adapter/fs"
	"pyindent/internal/adapter/memstore"
	"pyindent/internal/adapter/store"
	"pyindent/internal/domain"
)

var allRules = LintOptions{
	TabSize: tabSize,
	Rules:   []string{config.RuleContinuation, config.RuleOverIndent},
	Workers: 2,
}

const cleanSource = `import os

def f(a,
      b):
    if a:
        return b
    elif b:
        pass
    else:
        x = [
            1,
        ]
        return x

# comment
class C:
    """Doc.

more
    """
    y = 1
`

const messySource = `def g():
    if x:
        y = 1
        else:
    z = foo(1,
        2)
      w = 3
`

func splitSource(src string) []string {
	return strings.Split(strings.TrimSuffix(src, "\n"), "\n")
}

func TestCheckLines_Clean(t *testing.T) {
	assert.Empty(t, CheckLines(splitSource(cleanSource), allRules))
}

func TestCheckLines_Findings(t *testing.T) {
	findings := CheckLines(splitSource(messySource), allRules)
	require.Len(t, findings, 3)

	assert.Equal(t, 4, findings[0].Line)
	assert.Equal(t, config.RuleOverIndent, findings[0].Rule)
	assert.Equal(t, 4, findings[0].Expected)
	assert.Equal(t, 8, findings[0].Actual)

	assert.Equal(t, 6, findings[1].Line)
	assert.Equal(t, config.RuleContinuation, findings[1].Rule)
	assert.Equal(t, 12, findings[1].Expected)
	assert.Equal(t, 8, findings[1].Actual)

	assert.Equal(t, 7, findings[2].Line)
	assert.Equal(t, config.RuleOverIndent, findings[2].Rule)
	assert.Equal(t, 4, findings[2].Expected)
	assert.Equal(t, 6, findings[2].Actual)
}

func TestCheckLines_RuleSelection(t *testing.T) {
	opts := allRules
	opts.Rules = []string{config.RuleContinuation}

	findings := CheckLines(splitSource(messySource), opts)
	require.Len(t, findings, 1)
	assert.Equal(t, config.RuleContinuation, findings[0].Rule)
}

func TestCheckLines_FirstLineIndented(t *testing.T) {
	findings := CheckLines([]string{"  x = 1"}, allRules)
	require.Len(t, findings, 1)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, 0, findings[0].Expected)
}

func TestCheckLines_BackslashContinuation(t *testing.T) {
	lines := []string{
		"x = 1 + \\",
		"        2",
		"y = 3",
	}
	assert.Empty(t, CheckLines(lines, allRules))
}

func TestCheckLines_HangingIndent(t *testing.T) {
	lines := []string{
		"result = call(",
		"    a,",
		"    b,",
		")",
		"def long_name(",
		"        a, b):",
		"    return a",
	}
	assert.Empty(t, CheckLines(lines, allRules))
}

func writePy(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newLint(st *memstore.MemoryStore) *LintUseCase {
	walker := fs.NewWalker([]string{"**/*.py"}, nil)
	return NewLintUseCase(walker, fs.Reader{}, st, allRules)
}

func TestLint_Tree(t *testing.T) {
	root := t.TempDir()
	writePy(t, filepath.Join(root, "clean.py"), cleanSource)
	writePy(t, filepath.Join(root, "pkg", "messy.py"), messySource)
	writePy(t, filepath.Join(root, "README.md"), "  not python\n")

	st := memstore.NewMemoryStore()
	uc := newLint(st)

	var calls int
	res, err := uc.Lint(context.Background(), root, func(processed, total int, _ string) {
		calls++
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	assert.Equal(t, 2, res.Summary.FilesChecked)
	assert.Equal(t, 0, res.Summary.FilesCached)
	assert.Equal(t, 3, res.Summary.Findings)
	assert.Empty(t, res.Errors)

	require.Len(t, res.Reports, 2)
	assert.True(t, strings.HasSuffix(res.Reports[0].Doc.Path, "clean.py"))
	for _, f := range res.Findings() {
		assert.True(t, strings.HasSuffix(f.Path, "messy.py"))
	}

	docs, err := st.ListDocs()
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLint_CacheAndRemoval(t *testing.T) {
	root := t.TempDir()
	clean := filepath.Join(root, "clean.py")
	messy := filepath.Join(root, "messy.py")
	writePy(t, clean, cleanSource)
	writePy(t, messy, messySource)

	st := memstore.NewMemoryStore()
	uc := newLint(st)

	_, err := uc.Lint(context.Background(), root, nil)
	require.NoError(t, err)

	// Unchanged files come from the store.
	res, err := uc.Lint(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.FilesCached)
	assert.Equal(t, 3, res.Summary.Findings)

	// Fixing one file rescans it; deleting the other drops its report.
	writePy(t, messy, "def g():\n    return 1\n")
	require.NoError(t, os.Remove(clean))

	res, err = uc.Lint(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.FilesChecked)
	assert.Equal(t, 0, res.Summary.FilesCached)
	assert.Equal(t, 1, res.Summary.FilesRemoved)
	assert.Equal(t, 0, res.Summary.Findings)

	_, err = st.GetReport(clean)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLint_BoltStore(t *testing.T) {
	root := t.TempDir()
	writePy(t, filepath.Join(root, "messy.py"), messySource)

	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer st.Close()

	uc := NewLintUseCase(fs.NewWalker(nil, nil), fs.Reader{}, st, allRules)
	for run := 0; run < 2; run++ {
		res, err := uc.Lint(context.Background(), root, nil)
		require.NoError(t, err)
		assert.Equal(t, run, res.Summary.FilesCached)

		findings := res.Findings()
		require.Len(t, findings, 3)
		assert.Equal(t, domain.Finding{
			Path:     filepath.Join(root, "messy.py"),
			Line:     6,
			Expected: 12,
			Actual:   8,
			Rule:     config.RuleContinuation,
			Message:  "continuation line should be indented 12 columns, found 8",
		}, findings[1])
	}
}

func TestLint_Cancelled(t *testing.T) {
	root := t.TempDir()
	writePy(t, filepath.Join(root, "a.py"), "x = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLint(memstore.NewMemoryStore()).Lint(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
