package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pyindent/config"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pyindent",
	Short: "Python indentation engine - predict, plan and check indentation",
	Long: `pyindent scans Python source line by line and works out where the next
line should start: inside brackets, after block headers, after return or
pass, and around elif/else/except/finally.

Example usage:
  pyindent next main.py                 # Indent for the line after main.py
  pyindent newline main.py -r 3 -c 10   # Edit for Enter at row 3, col 10
  pyindent lint .                       # Check every .py file under .
  pyindent serve                        # HTTP API for editor plugins`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger, err = newLogger(cfg.Logging.Level)
		return err
	},
}

// FindingsError reports that lint ran cleanly but found problems.
type FindingsError struct {
	Count int
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%d indentation findings", e.Count)
}

// Execute runs the root command. It exits 2 when lint reports findings and
// 1 on any other error.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var findings *FindingsError
	if errors.As(err, &findings) {
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pyindent.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
