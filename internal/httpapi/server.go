package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shelfsight/shelfsight/internal/engine"
)

// Server exposes the engine over HTTP. Routing and transport live entirely
// here; the engine itself has no HTTP awareness.
type Server struct {
	engine  *engine.Engine
	limiter *rate.Limiter
}

// NewServer creates the HTTP surface with a token-bucket limit on /ask.
func NewServer(eng *engine.Engine, rps float64, burst int) *Server {
	return &Server{
		engine:  eng,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Router builds the mux router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics/summary", s.handleMetricsSummary).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.engine.Metrics().Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

type askPayload struct {
	Message      string `json:"message"`
	CategoryID   string `json:"categoryId"`
	SnapshotDate string `json:"snapshotDate"` // YYYY-MM
	TargetBrand  string `json:"targetBrand,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var payload askPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" || payload.CategoryID == "" {
		writeError(w, http.StatusBadRequest, "message and categoryId are required")
		return
	}
	date, err := time.Parse("2006-01", payload.SnapshotDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "snapshotDate must be YYYY-MM")
		return
	}

	resp, err := s.engine.Ask(r.Context(), engine.Request{
		Message:      payload.Message,
		CategoryID:   payload.CategoryID,
		SnapshotDate: date,
		TargetBrand:  payload.TargetBrand,
	})
	if err != nil {
		if errors.Is(err, engine.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, "no snapshot for that category and month")
			return
		}
		log.Error().Err(err).Str("category", payload.CategoryID).Msg("Ask failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := s.engine.Metrics().Summary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to gather metrics")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
