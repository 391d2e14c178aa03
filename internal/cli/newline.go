package cli

import (
	"github.com/spf13/cobra"

	"pyindent/internal/adapter/analyzer"
	"pyindent/internal/domain"
	"pyindent/internal/usecase"
)

var (
	newlineRow     int
	newlineCol     int
	newlineTabSize int
)

var newlineCmd = &cobra.Command{
	Use:   "newline [file]",
	Short: "Plan the edit for pressing Enter at a position",
	Long: `Print, as JSON, the edit a "newline and indent" command should apply when
the cursor is at --row/--col: ranges to delete, text to insert, where the
cursor lands and whether a hanging indent was used.

Examples:
  pyindent newline main.py --row 3 --col 12
  pyindent newline -r 0 -c 6 < snippet.py`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNewline,
}

func init() {
	rootCmd.AddCommand(newlineCmd)
	newlineCmd.Flags().IntVarP(&newlineRow, "row", "r", 0, "cursor row, zero-based (required)")
	newlineCmd.Flags().IntVarP(&newlineCol, "col", "c", 0, "cursor column in characters, zero-based (required)")
	newlineCmd.Flags().IntVarP(&newlineTabSize, "tab-size", "t", 0, "tab size (default from config)")
	newlineCmd.MarkFlagRequired("row")
	newlineCmd.MarkFlagRequired("col")
}

func runNewline(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	lines, err := readInput(args)
	if err != nil {
		return err
	}

	tabSize := cfg.Indent.TabSize
	if newlineTabSize > 0 {
		tabSize = newlineTabSize
	}

	uc := usecase.NewNewlineUseCase(analyzer.NewParser())
	edit, err := uc.Plan(usecase.NewlineRequest{
		Lines:   lines,
		Cursor:  domain.Position{Row: newlineRow, Col: newlineCol},
		TabSize: tabSize,
		Options: usecase.NewlineOptions{
			TrimLinesWithOnlyWhitespace: cfg.Indent.TrimWhitespaceOnlyLines,
			UseTabOnHangingIndent:       cfg.Indent.UseTabOnHangingIndent,
			KeepHangingBracketOnLine:    cfg.Indent.KeepHangingBracketOnLine,
		},
	})
	if err != nil {
		return err
	}
	return printJSON(edit)
}
