package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"pyindent/config"
	"pyindent/internal/adapter/analyzer"
	"pyindent/internal/adapter/store"
	"pyindent/internal/domain"
	"pyindent/internal/port"
)

// LintOptions selects what the checker reports.
type LintOptions struct {
	TabSize int
	Rules   []string
	Workers int
}

func (o LintOptions) enabled(rule string) bool {
	return slices.Contains(o.Rules, rule)
}

// ProgressFunc is called after each file with the number processed so far.
type ProgressFunc func(processed, total int, currentFile string)

// LintUseCase checks the indentation of every Python file under a root.
type LintUseCase struct {
	walker port.FileWalker
	reader port.FileReader
	store  port.ReportStore
	opts   LintOptions
}

func NewLintUseCase(walker port.FileWalker, reader port.FileReader, store port.ReportStore, opts LintOptions) *LintUseCase {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &LintUseCase{
		walker: walker,
		reader: reader,
		store:  store,
		opts:   opts,
	}
}

// LintResult contains the results of a lint run.
type LintResult struct {
	Summary domain.LintSummary
	Reports []domain.FileReport
	Errors  []string
}

// Findings returns every finding sorted by path and line.
func (r *LintResult) Findings() []domain.Finding {
	var all []domain.Finding
	for _, rep := range r.Reports {
		all = append(all, rep.Findings...)
	}
	return all
}

type lintJob struct {
	file     port.FileInfo
	existing *domain.Document
}

type lintOutcome struct {
	report domain.FileReport
	cached bool
	err    error
}

// Lint walks root and checks every selected file. Files whose content hash
// matches the stored report are not rescanned, and reports for files that
// no longer exist are dropped. Cancelling ctx stops the run between files.
func (u *LintUseCase) Lint(ctx context.Context, root string, progress ProgressFunc) (*LintResult, error) {
	result := &LintResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list cached reports: %w", err)
	}
	existingMap := make(map[string]domain.Document)
	for _, doc := range existingDocs {
		existingMap[doc.Path] = doc
	}

	jobs := make(chan lintJob)
	// Buffered so workers never block once the collector has returned.
	outcomes := make(chan lintOutcome, len(files))

	for i, n := 0, min(u.opts.Workers, max(len(files), 1)); i < n; i++ {
		go func() {
			for job := range jobs {
				outcomes <- u.lintFile(job)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, file := range files {
			job := lintJob{file: file}
			if doc, ok := existingMap[file.Path]; ok {
				job.existing = &doc
			}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	seenPaths := make(map[string]bool)
	for processed := 0; processed < len(files); processed++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var out lintOutcome
		select {
		case out = <-outcomes:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		path := out.report.Doc.Path
		seenPaths[path] = true
		if progress != nil {
			progress(processed+1, len(files), path)
		}

		if out.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to check %s: %v", path, out.err))
			continue
		}
		if out.cached {
			result.Summary.FilesCached++
		} else if err := u.store.PutReport(out.report); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to cache report for %s: %v", path, err))
		}

		result.Summary.FilesChecked++
		result.Summary.Lines += out.report.Lines
		result.Summary.Findings += len(out.report.Findings)
		result.Reports = append(result.Reports, out.report)
	}

	for path := range existingMap {
		if seenPaths[path] {
			continue
		}
		if err := u.store.DeleteReport(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to drop report for %s: %v", path, err))
		} else {
			result.Summary.FilesRemoved++
		}
	}

	slices.SortFunc(result.Reports, func(a, b domain.FileReport) int {
		return strings.Compare(a.Doc.Path, b.Doc.Path)
	})
	return result, nil
}

func (u *LintUseCase) lintFile(job lintJob) lintOutcome {
	doc := domain.Document{
		ID:      generateDocID(job.file.Path),
		Path:    job.file.Path,
		ModTime: time.Unix(job.file.ModTime, 0),
	}

	lines, err := u.reader.ReadLines(job.file.Path)
	if err != nil {
		return lintOutcome{report: domain.FileReport{Doc: doc}, err: fmt.Errorf("failed to read file: %w", err)}
	}
	doc.Hash = contentHash(lines)

	if job.existing != nil && job.existing.Hash == doc.Hash {
		cached, err := u.store.GetReport(job.file.Path)
		if err == nil {
			return lintOutcome{report: cached, cached: true}
		}
		if !errors.Is(err, store.ErrNotFound) {
			return lintOutcome{report: domain.FileReport{Doc: doc}, err: err}
		}
	}

	findings := CheckLines(lines, u.opts)
	for i := range findings {
		findings[i].Path = job.file.Path
	}
	return lintOutcome{report: domain.FileReport{Doc: doc, Lines: len(lines), Findings: findings}}
}

// CheckLines scores each line against the indent predicted from the lines
// above it. Line numbers in the findings are 1-based; Path is left empty.
//
// Blank lines and comment-only lines are neither checked nor used as the
// previous line, and lines that start inside a string literal are not
// checked.
func CheckLines(lines []string, opts LintOptions) []domain.Finding {
	findings := []domain.Finding{}
	sc := analyzer.NewScanner()

	// Significant lines fed to the scanner so far, and the previous one's
	// trimmed text for backslash continuations.
	var seen []string
	prev := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		inString := sc.InString()
		if !inString && (trimmed == "" || strings.HasPrefix(trimmed, "#")) {
			continue
		}

		if !inString && !strings.HasSuffix(prev, "\\") {
			if f, ok := checkLine(sc.Result(), seen, line, opts); ok {
				f.Line = i + 1
				findings = append(findings, f)
			}
		}

		sc.Push(line)
		seen = append(seen, line)
		prev = trimmed
	}
	return findings
}

func checkLine(res domain.ParseResult, prior []string, line string, opts LintOptions) (domain.Finding, bool) {
	actual := IndentationLevel(line)
	predicted := max(NextIndentationLevel(res, prior, opts.TabSize), 0)

	if len(res.OpenBracketStack) > 0 {
		if !opts.enabled(config.RuleContinuation) {
			return domain.Finding{}, false
		}
		if slices.Contains(continuationLevels(res, prior, line, predicted, opts.TabSize), actual) {
			return domain.Finding{}, false
		}
		return domain.Finding{
			Expected: predicted,
			Actual:   actual,
			Rule:     config.RuleContinuation,
			Message:  fmt.Sprintf("continuation line should be indented %d columns, found %d", predicted, actual),
		}, true
	}

	if !opts.enabled(config.RuleOverIndent) {
		return domain.Finding{}, false
	}
	if d := lineDedentation(res, prior, line); d > 0 {
		return domain.Finding{
			Expected: actual - d,
			Actual:   actual,
			Rule:     config.RuleOverIndent,
			Message:  fmt.Sprintf("block continuation should line up with its opening statement at column %d", actual-d),
		}, true
	}
	if actual > predicted {
		return domain.Finding{
			Expected: predicted,
			Actual:   actual,
			Rule:     config.RuleOverIndent,
			Message:  fmt.Sprintf("indented %d columns, at most %d expected", actual, predicted),
		}, true
	}
	return domain.Finding{}, false
}

// continuationLevels lists the indents accepted for a line inside brackets.
func continuationLevels(res domain.ParseResult, prior []string, line string, predicted, tabSize int) []int {
	levels := []int{predicted}

	// Hanging indent after a bracket that ended the previous line, one or
	// two levels deep.
	if res.CanHang {
		base := IndentationLevel(prior[len(prior)-1])
		levels = append(levels, base+tabSize, base+2*tabSize)
	}

	// A closing bracket may line up with the line that opened it.
	if trimmed := strings.TrimSpace(line); trimmed != "" && strings.ContainsRune(")]}", rune(trimmed[0])) {
		open := res.OpenBracketStack[len(res.OpenBracketStack)-1]
		levels = append(levels, IndentationLevel(prior[open.Row]))
	}
	return levels
}

// generateDocID creates a stable ID for a document based on its path.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}

func contentHash(lines []string) string {
	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
