// Package httpapi exposes the equation solver over HTTP: a JSON solve
// endpoint, an informational root, Prometheus metrics, and the CORS,
// request-ID, logging and compression middleware around them.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	equationapi "github.com/solvekit/go-equation-api"
)

const infoMessage = "Equation API. Try /solve?equation=x^2+2x-10"

// Server is the HTTP front of the solver.
type Server struct {
	log     *zap.SugaredLogger
	solver  *equationapi.Solver
	encoder *Encoder

	httpServer *http.Server
	closed     *atomic.Bool

	options *serverOptions
}

// NewServer creates a Server around the given solver.
func NewServer(solver *equationapi.Solver, options ...ServerOption) *Server {
	o := serverOptions{
		addr:        "0.0.0.0:8000",
		logRequests: true,
	}
	for _, option := range options {
		option(&o)
	}

	s := Server{
		log:     zap.S().With("module", "equation.http"),
		solver:  solver,
		encoder: NewEncoder(),
		closed:  atomic.NewBool(false),
		options: &o,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleInfo)
	mux.HandleFunc("/solve", s.handleSolve)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:    o.addr,
		Handler: s.middleware(mux),
	}
	return &s
}

// Handler returns the fully wrapped HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// ListenAndServe runs the server until Shutdown. It returns
// http.ErrServerClosed after a graceful stop.
func (s *Server) ListenAndServe() error {
	s.log.Infof("Listening on %s", s.options.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closed.Store(true)
	return s.httpServer.Shutdown(ctx)
}

// middleware wraps the mux with request-ID assignment, CORS headers,
// access logging and the closed guard.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", reqID)

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if s.closed.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if s.options.logRequests {
			s.log.Infow("Request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", reqID,
			)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	// The mux routes every unregistered path here.
	if r.URL.Path != "/" {
		s.writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"message": infoMessage})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := equationapi.EquationRequest{
		Equation: q.Get("equation"),
		Variable: q.Get("variable"),
	}

	res := s.solver.Solve(r.Context(), &req)
	if !res.OK() {
		s.writeJSON(w, r, res.Status, map[string]string{"error": res.Err.Error()})
		return
	}
	s.writeJSON(w, r, res.Status, map[string]string{"result": res.Result})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Errorf("Marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	encoding := s.encoder.Negotiate(r.Header.Get("Accept-Encoding"))
	encoded, err := s.encoder.Encode(encoding, body)
	if err != nil {
		s.log.Errorf("Encode response: %v", err)
		encoding, encoded = "", body
	}

	w.Header().Set("Content-Type", "application/json")
	if encoding != "" {
		w.Header().Set("Content-Encoding", encoding)
		w.Header().Set("Vary", "Accept-Encoding")
	}
	w.WriteHeader(status)
	if _, err := w.Write(encoded); err != nil {
		s.log.Warnf("Write response: %v", err)
	}
}
