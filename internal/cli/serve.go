package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/observability"
	"github.com/matzehuels/comicstrip/pkg/panel"
	"github.com/matzehuels/comicstrip/pkg/pipeline"
)

const (
	defaultAddr    = ":8080"
	maxRequestBody = 32 << 20 // storyboards may inline keyframes as data URIs
	shutdownGrace  = 10 * time.Second
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		images  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comic pipeline over HTTP",
		Long: `Serve the comic pipeline over HTTP.

  POST /api/pages?format=svg|png|pdf|json[&style=comic]
      Body: a storyboard (JSON, or YAML with Content-Type application/yaml).
      Returns the rendered page; the X-Page-ID header identifies it.
  GET /healthz

Relative keyframe paths are resolved against --images. Absolute paths and
'..' are rejected; data URIs are accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			if addr == "" {
				addr = defaultAddr
			}
			if images == "" {
				images = c.Config.Serve.Images
			}
			return c.runServe(cmd.Context(), addr, images, c.options(opts), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+defaultAddr+")")
	cmd.Flags().StringVar(&images, "images", "", "directory that relative keyframe paths are resolved against")
	cmd.Flags().StringVar(&opts.Style, "style", "", "default visual style")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, images string, opts pipeline.Options, noCache bool) error {
	if err := opts.ValidateForCompose(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, opts, images, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr, "images", images)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// server handles page requests. Options are copied per request.
type server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	images   string
	logger   *log.Logger
}

func newServer(runner *pipeline.Runner, defaults pipeline.Options, images string, logger *log.Logger) *server {
	return &server{runner: runner, defaults: defaults, images: images, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/pages", s.handleCreatePage)
	})
	return r
}

// observe reports every request to the HTTP hooks and hands the handler a
// logger tagged with the request ID.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := withLogger(r.Context(), s.logger.With("request", middleware.GetReqID(r.Context())))
		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, time.Since(start))
		loggerFromContext(ctx).Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", status, "duration", time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r.Context())

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	sbFormat := panel.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		sbFormat = panel.FormatYAML
	}
	sb, err := panel.Read(http.MaxBytesReader(w, r.Body, maxRequestBody), sbFormat)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sb.Resolve(s.images, false); err != nil {
		writeError(w, err)
		return
	}

	opts := s.defaults
	opts.Formats = []string{format}
	if style := r.URL.Query().Get("style"); style != "" {
		opts.Style = style
	}
	opts.Logger = logger

	result, err := s.runner.Execute(r.Context(), sb, opts)
	if err != nil {
		logger.Warn("page failed", "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Page-ID", result.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps rejected input to 400, oversized bodies to 413 and
// everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(errors.GetCode(err))

	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		status, code = http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput)
	case errors.IsInputError(err):
		status = http.StatusBadRequest
	}
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
