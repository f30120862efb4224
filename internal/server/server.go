// Package server exposes the flowlens pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz      liveness probe
//	GET  /metrics      Prometheus metrics, when a registry is configured
//	POST /v1/render    render the flow document in the request body
//	POST /v1/diff      compare the multipart fields "old" and "new"
//
// Both /v1 routes accept the query parameters tool (graphviz, plantuml or
// mermaid; default graphviz) and format (text, svg or png; default text).
// Text responses are JSON; svg and png return the new side's image.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/diff"
	"github.com/matzehuels/flowlens/pkg/errors"
	"github.com/matzehuels/flowlens/pkg/observability"
	"github.com/matzehuels/flowlens/pkg/pipeline"
	"github.com/matzehuels/flowlens/pkg/source"
)

// DefaultMaxBodyBytes limits the size of uploaded flow documents.
const DefaultMaxBodyBytes = 8 << 20

// defaultName is reported as the path of uploaded documents without a name.
// It has no extension so the decoder sniffs the content.
const defaultName = "flow"

// Server serves the HTTP API.
type Server struct {
	Runner  *pipeline.Runner
	Logger  *log.Logger
	Metrics http.Handler // Served at /metrics when set.

	MaxBodyBytes int64
}

// New creates a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Runner:       runner,
		Logger:       logger,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.render)
		r.Post("/diff", s.diff)
	})
	return r
}

// observe assigns a request ID and reports every request to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		dur := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, dur)
		s.Logger.Debug("request", "id", id, "method", r.Method, "route", route, "status", status, "duration", dur)
	})
}

// response is the JSON body of a successful /v1 request.
type response struct {
	Path        string              `json:"path"`
	Label       string              `json:"label,omitempty"`
	Tool        string              `json:"tool"`
	Difference  pipeline.Difference `json:"difference"`
	Summary     diff.Summary        `json:"summary"`
	Nodes       int                 `json:"nodes"`
	Transitions int                 `json:"transitions"`
}

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(data) == 0 {
		s.fail(w, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultName
	}
	s.respond(w, r, name, source.Difference{New: data})
}

func (s *Server) diff(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)
	if err := r.ParseMultipartForm(s.MaxBodyBytes); err != nil {
		s.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read multipart form"))
		return
	}

	name := r.URL.Query().Get("name")
	old, _, err := formFile(r, "old")
	if err != nil {
		s.fail(w, err)
		return
	}
	data, filename, err := formFile(r, "new")
	if err != nil {
		s.fail(w, err)
		return
	}
	if name == "" {
		name = filename
	}
	if name == "" {
		name = defaultName
	}
	s.respond(w, r, name, source.Difference{Old: old, New: data})
}

// respond renders d with the query's tool and format and writes the result.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, name string, d source.Difference) {
	q := r.URL.Query()
	tool := q.Get("tool")
	if tool == "" {
		tool = pipeline.DefaultTool
	}
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatText
	}

	ro := pipeline.RenderOptions{Tool: tool, Refresh: q.Get("refresh") == "true"}
	if format != pipeline.FormatText {
		ro.Formats = []string{format}
	}
	out, err := s.Runner.Render(r.Context(), name, d, ro)
	if err != nil {
		s.fail(w, err)
		return
	}

	if format != pipeline.FormatText {
		for _, a := range out.Artifacts {
			if a.Side == cache.SideNew && a.Format == format {
				w.Header().Set("Content-Type", contentTypes[format])
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(a.Data)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, response{
		Path:        out.Path,
		Label:       out.Label,
		Tool:        tool,
		Difference:  out.Difference,
		Summary:     out.Summary,
		Nodes:       out.Nodes,
		Transitions: out.Transitions,
	})
}

var contentTypes = map[string]string{
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

// formFile reads the multipart field key as a file upload or, failing
// that, as a plain value.
func formFile(r *http.Request, key string) ([]byte, string, error) {
	f, header, err := r.FormFile(key)
	if err == nil {
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", key)
		}
		return data, header.Filename, nil
	}
	if v := r.FormValue(key); v != "" {
		return []byte(v), "", nil
	}
	return nil, "", errors.New(errors.ErrCodeInvalidInput, "missing form field %q", key)
}

// fail writes err with a status derived from its code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTool, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeParse, errors.ErrCodeStartNotDefined, errors.ErrCodeUnresolvedTarget:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
