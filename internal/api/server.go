package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/lyrebird/internal/archive"
	"github.com/MikeSquared-Agency/lyrebird/internal/engine"
)

// Server is the HTTP transport. Session logic lives in the engine; handlers
// only decode, dispatch, and map errors onto status codes.
type Server struct {
	router  *chi.Mux
	port    int
	engine  *engine.Engine
	archive *archive.Archive
	logger  *slog.Logger
	started time.Time
}

// NewServer builds the router. arc may be nil, which disables the report
// listing endpoint; an empty apiKey disables the X-API-Key check.
func NewServer(port int, apiKey string, eng *engine.Engine, arc *archive.Archive, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		engine:  eng,
		archive: arc,
		logger:  logger,
		started: time.Now(),
	}

	router.Get("/health", s.health)
	router.Get("/status", s.status)

	router.Route("/api", func(r chi.Router) {
		r.Use(apiKeyMiddleware(apiKey))
		r.Post("/honeypot", s.honeypot)
		r.Get("/sessions/{id}", s.getSession)
		r.Get("/reports", s.listReports)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("api server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// apiKeyMiddleware rejects requests whose X-API-Key header does not match the
// configured key. An empty key turns the check off.
func apiKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" && r.Header.Get("X-API-Key") != key {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	active, _, err := s.engine.Counts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"activeSessions": active,
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	active, terminated, err := s.engine.Counts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":            "lyrebird",
		"status":             "ok",
		"uptimeSeconds":      int64(time.Since(s.started).Seconds()),
		"activeSessions":     active,
		"terminatedSessions": terminated,
		"reportsEmitted":     s.engine.ReportsEmitted(),
		"modelConfigured":    s.engine.ModelAssisted(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
