package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pyindent/internal/adapter/analyzer"
	"pyindent/internal/domain"
	"pyindent/internal/usecase"
)

var (
	nextRow     int
	nextTabSize int
	nextJSON    bool
)

var nextCmd = &cobra.Command{
	Use:   "next [file]",
	Short: "Print the indentation level of the next line",
	Long: `Print how many columns the line after the input (or after --row) should
be indented.

Examples:
  pyindent next main.py
  pyindent next main.py --row 4 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().IntVarP(&nextRow, "row", "r", -1, "last row to consider, zero-based (default: whole file)")
	nextCmd.Flags().IntVarP(&nextTabSize, "tab-size", "t", 0, "tab size (default from config)")
	nextCmd.Flags().BoolVar(&nextJSON, "json", false, "output level and parse result as JSON")
}

type nextOutput struct {
	Level  int                `json:"level"`
	Result domain.ParseResult `json:"result"`
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	lines, err := readInput(args)
	if err != nil {
		return err
	}
	lines, err = linesThrough(lines, nextRow)
	if err != nil {
		return err
	}

	tabSize := cfg.Indent.TabSize
	if nextTabSize > 0 {
		tabSize = nextTabSize
	}

	level, res := usecase.IndentationInfo(analyzer.NewParser(), lines, tabSize)
	level = max(level, 0)

	if nextJSON {
		return printJSON(nextOutput{Level: level, Result: res})
	}
	fmt.Println(level)
	return nil
}
