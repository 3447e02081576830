package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qrsheet/pkg/buildinfo"
	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/observability"
	"github.com/matzehuels/qrsheet/pkg/pipeline"
)

const (
	defaultAddr     = ":8080"
	defaultMaxCodes = 600 // 20 default pages
	shutdownTimeout = 10 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	configOpts
	addr     string
	maxCodes int
	workers  int
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve codes and sheets over HTTP",
		Long: `Serve codes and sheets over HTTP.

Endpoints:
  GET /healthz                   liveness and version
  GET /codes/{code}.svg          one label as SVG
  GET /codes/{code}.png          one label as PNG
  GET /sheets/{start}-{end}.pdf  a sheet for the inclusive range

Nothing is written to the output directories; sheets are built in a temporary
directory and streamed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	opts.configOpts.bind(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().IntVar(&opts.maxCodes, "max-codes", defaultMaxCodes, "largest range a sheet request may ask for")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "number of codes rendered concurrently per sheet")

	return cmd
}

// runServe listens until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.rasterizer)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newServer(runner, logger, opts.maxCodes, opts.workers).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Listening on %s", StyleLink.Render("http://"+displayAddr(opts.addr)))
	printKeyValue("Rasterizer", opts.rasterizer)
	printKeyValue("Max codes", strconv.Itoa(opts.maxCodes))
	printNewline()
	printNextStep("Fetch a sheet", fmt.Sprintf("curl -o sheet.pdf http://%s/sheets/301-330.pdf", displayAddr(opts.addr)))

	select {
	case err := <-errc:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// =============================================================================
// Handlers
// =============================================================================

// server serves one runner. The runner is safe for concurrent use, so
// requests share it.
type server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	maxCodes int
	workers  int
}

func newServer(runner *pipeline.Runner, logger *log.Logger, maxCodes, workers int) *server {
	if maxCodes < 1 {
		maxCodes = defaultMaxCodes
	}
	return &server{runner: runner, logger: logger, maxCodes: maxCodes, workers: workers}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/codes/{file}", s.handleCode)
	r.Get("/sheets/{file}", s.handleSheet)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("NOT_FOUND", "no route for "+r.URL.Path))
	})
	return r
}

// observe reports every request to the HTTP hooks and the debug log.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.UserAgent())
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", elapsed)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleCode serves /codes/{code}.svg and /codes/{code}.png.
func (s *server) handleCode(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	code := strings.TrimSuffix(file, ext)

	var contentType string
	switch ext {
	case ".svg":
		contentType = "image/svg+xml"
	case ".png":
		contentType = "image/png"
	default:
		writeJSON(w, http.StatusNotFound, errorBody("NOT_FOUND", "unsupported format "+strconv.Quote(ext)))
		return
	}
	if err := errors.ValidateCode(code); err != nil {
		s.writeError(w, r, err)
		return
	}

	unit, err := s.runner.RenderUnit(r.Context(), code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body := unit.SVG
	if ext == ".png" {
		body = unit.PNG
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Cache", cacheStatus(unit.CacheHit))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("write response", "code", code, "err", err)
	}
}

// handleSheet serves /sheets/{start}-{end}.pdf.
func (s *server) handleSheet(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	name, ok := strings.CutSuffix(file, ".pdf")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("NOT_FOUND", "sheets are served as .pdf"))
		return
	}
	start, end, err := parseSheetRange(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Bounds are non-negative, so end-start cannot overflow.
	if end-start >= s.maxCodes {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidRange, "range %d-%d exceeds the limit of %d codes", start, end, s.maxCodes))
		return
	}

	tmp, err := os.MkdirTemp("", appName+"-sheet-*")
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodePersist, err, "create temporary directory"))
		return
	}
	defer os.RemoveAll(tmp)

	result, err := s.runner.Execute(r.Context(), start, end, pipeline.Options{
		Workers:       s.workers,
		DocumentPath:  filepath.Join(tmp, file),
		SkipUnitFiles: true,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	f, err := os.Open(result.Document)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodePersist, err, "open sheet"))
		return
	}
	defer f.Close()

	w.Header().Set("X-Run-ID", result.RunID)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("stream sheet", "run", result.RunID, "err", err)
	}
}

// parseSheetRange parses "301-480".
func parseSheetRange(name string) (start, end int, err error) {
	lo, hi, ok := strings.Cut(name, "-")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidRange, "expected {start}-{end}, got %q", name)
	}
	return parseRange([]string{lo, hi})
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Responses
// =============================================================================

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func errorBody(code, msg string) errorResponse {
	return errorResponse{Type: "error", Code: code, Message: msg}
}

// writeError maps err to a status code and writes it as JSON.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	body := errorBody(string(code), errors.UserMessage(err))
	body.Subject = errors.GetSubject(err)
	writeJSON(w, status, body)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidRange, errors.ErrCodeInvalidCode:
		return http.StatusBadRequest
	case errors.ErrCodeEncodingCapacity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("write JSON response", "err", err)
	}
}
