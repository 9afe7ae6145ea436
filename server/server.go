package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lumen-org/lumen/warehouse"
)

// ============================================================================
// SERVER — HTTP boundary in front of the filter engine
// ============================================================================
// One filter-and-project pass per request, built from explicit query
// parameters — no ambient UI state. The loader is the only shared,
// concurrently touched piece; tables themselves are immutable after load.
// ============================================================================

// DataSource supplies the dataset pair. *warehouse.Loader implements it.
type DataSource interface {
	Load(ctx context.Context) (*warehouse.Datasets, error)
	Invalidate()
}

// Server serves the dashboard API.
type Server struct {
	source DataSource
	router *mux.Router
}

// New builds a server around a data source.
func New(source DataSource) *Server {
	s := &Server{source: source}

	r := mux.NewRouter()
	r.Use(s.logRequests)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/people", s.handleDataset("people")).Methods(http.MethodGet)
	v1.HandleFunc("/sessions", s.handleDataset("sessions")).Methods(http.MethodGet)
	v1.HandleFunc("/people/export", s.handleExport("people")).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/export", s.handleExport("sessions")).Methods(http.MethodGet)
	v1.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	v1.HandleFunc("/insights", s.handleInsights).Methods(http.MethodGet)
	v1.HandleFunc("/datasets/{name}/schema", s.handleSchema).Methods(http.MethodGet)
	v1.HandleFunc("/cache/invalidate", s.handleInvalidate).Methods(http.MethodPost)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ============================================================================
// MIDDLEWARE
// ============================================================================

type wrappedWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (w *wrappedWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.ResponseWriter.WriteHeader(statusCode)
	w.statusCode = statusCode
	w.headerWritten = true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()[:8]

		wrapped := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s %s %d %s", reqID, r.Method, r.URL.RequestURI(), wrapped.statusCode, time.Since(start))
	})
}

// ============================================================================
// RESPONSE HELPERS
// ============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
