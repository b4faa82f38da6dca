package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/p-maje/inz-wasm-compiler/compiler"
	compilererrors "github.com/p-maje/inz-wasm-compiler/errors"
	"github.com/p-maje/inz-wasm-compiler/runtime"
)

const (
	maxSourceBytes = 1 << 20
	runTimeout     = 10 * time.Second
)

type Server struct {
	logger *zap.Logger
	runner *runtime.Runner
	mux    *http.ServeMux
}

type Option func(*Server)

// WithLogger attaches a logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(opts ...Option) *Server {
	s := &Server{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = runtime.New(runtime.WithLogger(s.logger))

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /compile", s.handleCompile)
	s.mux.HandleFunc("POST /run", s.handleRun)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("duration", time.Since(start)))
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	source, err := io.ReadAll(io.LimitReader(r.Body, maxSourceBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	wat, err := compiler.Compile(string(source))
	if err != nil {
		s.writeDiagnostic(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, wat)
}

type runRequest struct {
	Source string `json:"source"`
	Stdin  string `json:"stdin"`
}

type runResponse struct {
	WAT    string `json:"wat"`
	Output string `json:"output"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSourceBytes)).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	wat, err := compiler.Compile(req.Source)
	if err != nil {
		s.writeDiagnostic(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()

	var output bytes.Buffer
	if err := s.runner.Run(ctx, wat, strings.NewReader(req.Stdin), &output); err != nil {
		s.logger.Warn("run failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runResponse{WAT: wat, Output: output.String()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

// writeDiagnostic reports a compilation error as 422 with the
// "<line>: <message>" text the compiler produces.
func (s *Server) writeDiagnostic(w http.ResponseWriter, err error) {
	var diag *compilererrors.Error
	if !errors.As(err, &diag) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Error(w, diag.Error(), http.StatusUnprocessableEntity)
}
