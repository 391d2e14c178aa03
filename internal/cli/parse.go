package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyindent/internal/adapter/analyzer"
	"pyindent/internal/adapter/fs"
)

var parseRow int

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Print the indentation facts for a file",
	Long: `Scan a Python file (or stdin) and print what the indenter sees: open
brackets, the last closed pair, the last block header and the last rows
starting with if/for/try/while.

Examples:
  pyindent parse main.py
  pyindent parse main.py --row 12   # only lines 0..12
  cat main.py | pyindent parse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().IntVarP(&parseRow, "row", "r", -1, "last row to scan, zero-based (default: whole file)")
}

func runParse(cmd *cobra.Command, args []string) error {
	lines, err := readInput(args)
	if err != nil {
		return err
	}
	lines, err = linesThrough(lines, parseRow)
	if err != nil {
		return err
	}

	res := analyzer.ParseLines(lines)
	return printJSON(res)
}

// readInput reads the named file, or stdin when no file is given.
func readInput(args []string) ([]string, error) {
	if len(args) == 0 || args[0] == "-" {
		lines, err := fs.SplitLines(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return lines, nil
	}

	lines, err := fs.ReadLines(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	logger.Debug("read input", "path", args[0], "lines", len(lines))
	return lines, nil
}

// linesThrough returns lines[0..row]. A negative row means all lines.
func linesThrough(lines []string, row int) ([]string, error) {
	if row < 0 {
		return lines, nil
	}
	if row >= len(lines) {
		return nil, fmt.Errorf("row %d out of range: input has %d lines", row, len(lines))
	}
	return lines[:row+1], nil
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
