package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"pyindent/internal/adapter/analyzer"
	"pyindent/internal/adapter/cache"
	"pyindent/internal/adapter/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the indentation API over HTTP",
	Long: `Run an HTTP server that editor plugins can call on every key press.
Parse results are cached by buffer content.

Endpoints:
  GET  /healthz
  POST /v1/parse      {"lines": [...]}
  POST /v1/indent     {"lines": [...], "tabSize": 4}
  POST /v1/newline    {"lines": [...], "cursor": {"row": 0, "col": 8}}
  POST /v1/lint       {"lines": [...], "rules": ["continuation"]}
  GET  /v1/schema/:name

Examples:
  pyindent serve
  pyindent serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	parseCache := cache.NewParseCache(cfg.Server.CacheSize, cfg.Server.CacheTTL)
	parser := cache.NewCachedParser(analyzer.NewParser(), parseCache)
	srv := httpapi.NewServer(parser, cfg, logger, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := srv.Run(ctx, addr)
	hits, misses := parseCache.Stats()
	logger.Info("server stopped", "cache_hits", hits, "cache_misses", misses)
	return err
}
