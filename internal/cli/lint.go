package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pyindent/config"
	"pyindent/internal/adapter/fs"
	"pyindent/internal/adapter/memstore"
	"pyindent/internal/adapter/store"
	"pyindent/internal/domain"
	"pyindent/internal/port"
	"pyindent/internal/usecase"
)

var (
	lintJSON    bool
	lintNoCache bool
)

var (
	locationFmt = color.New(color.FgCyan).SprintfFunc()
	ruleFmt     = color.New(color.FgYellow, color.Bold).SprintFunc()
	okFmt       = color.New(color.FgGreen).SprintfFunc()
	failFmt     = color.New(color.FgRed, color.Bold).SprintfFunc()
)

var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Check the indentation of Python files",
	Long: `Check every Python file under a directory against the indentation the
engine would produce. Reports are cached in .pyindent/cache.db within the
target directory, so unchanged files are not rescanned.

Exits with status 2 when findings are reported.

Examples:
  pyindent lint .
  pyindent lint src --json
  pyindent lint --no-cache`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "output findings as JSON")
	lintCmd.Flags().BoolVar(&lintNoCache, "no-cache", false, "do not read or write the report cache")
}

type lintOutput struct {
	Summary  domain.LintSummary `json:"summary"`
	Findings []domain.Finding   `json:"findings"`
	Errors   []string           `json:"errors,omitempty"`
}

func runLint(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	st, err := openReportStore(path, cfg, !lintNoCache && cfg.Lint.Cache)
	if err != nil {
		return err
	}
	defer st.Close()

	walker := fs.NewWalker(cfg.Lint.Includes, cfg.Lint.Excludes)
	lintUC := usecase.NewLintUseCase(walker, fs.Reader{}, st, usecase.LintOptions{
		TabSize: cfg.Indent.TabSize,
		Rules:   cfg.Lint.Rules,
		Workers: cfg.Lint.Workers,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var progress usecase.ProgressFunc
	if !lintJSON {
		progress = newProgress("Checking")
	}

	start := time.Now()
	result, err := lintUC.Lint(ctx, path, progress)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}
	logger.Debug("lint finished",
		"files", result.Summary.FilesChecked,
		"cached", result.Summary.FilesCached,
		"elapsed", time.Since(start))

	findings := result.Findings()
	if lintJSON {
		if findings == nil {
			findings = []domain.Finding{}
		}
		if err := printJSON(lintOutput{Summary: result.Summary, Findings: findings, Errors: result.Errors}); err != nil {
			return err
		}
	} else {
		writeFindings(os.Stdout, path, findings)
		writeSummary(os.Stdout, result)
	}

	if len(findings) > 0 {
		return &FindingsError{Count: len(findings)}
	}
	return nil
}

// openReportStore returns the bolt cache under root, migrated for cfg, or
// an in-memory store when caching is off.
func openReportStore(root string, cfg *config.Config, useCache bool) (port.ReportStore, error) {
	if !useCache {
		return memstore.NewMemoryStore(), nil
	}

	if err := config.EnsureStateDir(root); err != nil {
		return nil, fmt.Errorf("failed to create .pyindent directory: %w", err)
	}

	dbPath := config.CacheDBPath(root)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open report cache: %w", err)
	}

	migration, err := st.Prepare(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to prepare report cache: %w", err)
	}
	switch {
	case migration.NeedsRebuild:
		logger.Info("report cache cleared", "reason", migration.Reason)
	case migration.NeedsMigration:
		logger.Debug("report cache migrated", "reason", migration.Reason, "from", migration.OldVersion, "to", migration.NewVersion)
	}
	return st, nil
}

// newProgress returns a callback that draws a progress bar, created once the
// total is known.
func newProgress(label string) usecase.ProgressFunc {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", label, formatDuration(eta)))
			}
		}
	}
}

// writeFindings prints one line per finding, with paths relative to root.
func writeFindings(w io.Writer, root string, findings []domain.Finding) {
	for _, f := range findings {
		path := f.Path
		if rel, err := filepath.Rel(root, f.Path); err == nil {
			path = rel
		}
		fmt.Fprintf(w, "%s %s %s\n", locationFmt("%s:%d", path, f.Line), ruleFmt(f.Rule), f.Message)
	}
}

func writeSummary(w io.Writer, result *usecase.LintResult) {
	s := result.Summary
	fmt.Fprintf(w, "\nChecked %d files (%d cached, %d lines)", s.FilesChecked, s.FilesCached, s.Lines)
	if s.FilesRemoved > 0 {
		fmt.Fprintf(w, ", dropped %d stale reports", s.FilesRemoved)
	}
	fmt.Fprintln(w)

	if s.Findings == 0 {
		fmt.Fprintln(w, okFmt("No indentation problems found."))
	} else {
		fmt.Fprintln(w, failFmt("%d indentation problems found.", s.Findings))
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
