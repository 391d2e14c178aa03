// Package httpapi serves the indentation operations to editor plugins over
// HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pyindent/config"
	"pyindent/internal/domain"
	"pyindent/internal/port"
	"pyindent/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ParseRequest struct {
	Lines []string `json:"lines"`
}

type IndentRequest struct {
	Lines   []string `json:"lines"`
	TabSize int      `json:"tabSize,omitempty"`
}

type IndentResponse struct {
	Level  int                `json:"level"`
	Result domain.ParseResult `json:"result"`
}

type LintRequest struct {
	Lines   []string `json:"lines"`
	TabSize int      `json:"tabSize,omitempty"`
	Rules   []string `json:"rules,omitempty"`
}

type LintResponse struct {
	Findings []domain.Finding `json:"findings"`
}

var errBadRequest = errors.New("bad request")

// Server wires the use cases to gin routes.
type Server struct {
	parser  port.LineParser
	newline *usecase.NewlineUseCase
	cfg     *config.Config
	logger  *slog.Logger
	router  *gin.Engine
}

// NewServer builds the router. Request logs go to accessLog; pass nil to
// disable them.
func NewServer(parser port.LineParser, cfg *config.Config, logger *slog.Logger, accessLog io.Writer) *Server {
	s := &Server{
		parser:  parser,
		newline: usecase.NewNewlineUseCase(parser),
		cfg:     cfg,
		logger:  logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if accessLog != nil {
		router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
			Output:    accessLog,
			SkipPaths: []string{"/healthz"},
		}))
	}

	router.GET("/healthz", s.health)
	v1 := router.Group("/v1")
	v1.POST("/parse", s.parse)
	v1.POST("/indent", s.indent)
	v1.POST("/newline", s.planNewline)
	v1.POST("/lint", s.lint)
	v1.GET("/schema/:name", s.schema)

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) parse(c *gin.Context) {
	var req ParseRequest
	if !s.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.parser.Parse(req.Lines))
}

func (s *Server) indent(c *gin.Context) {
	var req IndentRequest
	if !s.bind(c, &req) {
		return
	}
	tabSize, err := s.tabSize(req.TabSize)
	if err != nil {
		s.fail(c, err)
		return
	}

	level, res := usecase.IndentationInfo(s.parser, req.Lines, tabSize)
	c.JSON(http.StatusOK, IndentResponse{Level: max(level, 0), Result: res})
}

func (s *Server) planNewline(c *gin.Context) {
	var req usecase.NewlineRequest
	if !s.bind(c, &req) {
		return
	}
	if req.TabSize == 0 {
		req.TabSize = s.cfg.Indent.TabSize
	}

	edit, err := s.newline.Plan(req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, edit)
}

func (s *Server) lint(c *gin.Context) {
	var req LintRequest
	if !s.bind(c, &req) {
		return
	}
	tabSize, err := s.tabSize(req.TabSize)
	if err != nil {
		s.fail(c, err)
		return
	}

	rules := req.Rules
	if len(rules) == 0 {
		rules = s.cfg.Lint.Rules
	}
	for _, r := range rules {
		if !slices.Contains([]string{config.RuleContinuation, config.RuleOverIndent}, r) {
			s.fail(c, fmt.Errorf("%w: unknown rule %q", errBadRequest, r))
			return
		}
	}

	findings := usecase.CheckLines(req.Lines, usecase.LintOptions{TabSize: tabSize, Rules: rules})
	c.JSON(http.StatusOK, LintResponse{Findings: findings})
}

func (s *Server) schema(c *gin.Context) {
	sch, err := Schema(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("%v; known: %s", err, strings.Join(SchemaNames(), ", ")),
		})
		return
	}
	c.JSON(http.StatusOK, sch)
}

func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func (s *Server) tabSize(requested int) (int, error) {
	switch {
	case requested == 0:
		return s.cfg.Indent.TabSize, nil
	case requested < 0:
		return 0, usecase.ErrInvalidTabSize
	default:
		return requested, nil
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, usecase.ErrCursorOutOfRange),
		errors.Is(err, usecase.ErrInvalidTabSize):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
