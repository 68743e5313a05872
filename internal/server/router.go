package server

import (
	"net/http"
	"strings"

	"github.com/hangarworks/fleetsync/internal/server/middleware"
	"github.com/hangarworks/fleetsync/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	h := s.handlers
	prefix := s.config.PathPrefix

	// Return 204 to keep favicon requests out of the 404 logs.
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health endpoints
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Job invocation endpoints
	jobRoutes := map[string]http.HandlerFunc{
		prefix + "/jobs/sync":    h.HandleSyncJob,
		prefix + "/jobs/cache":   h.HandleCacheJob,
		prefix + "/jobs/cleanup": h.HandleCleanupJob,
		prefix + "/jobs/rumors":  h.HandleRumorsJob,
		prefix + "/override":     h.HandleOverride,
		prefix + "/probe":        h.HandleProbe,
	}
	for route, handler := range jobRoutes {
		mux.HandleFunc(route, postOnly(handler))
	}

	// Read endpoints
	mux.HandleFunc(prefix+"/jobs", getOnly(h.HandleListJobs))
	mux.HandleFunc(prefix+"/rumors", getOnly(h.HandleListRumors))
	mux.HandleFunc(prefix+"/vehicles", getOnly(h.HandleListVehicles))
	mux.HandleFunc(prefix+"/vehicles/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		slug := extractPathParam(r.URL.Path, prefix+"/vehicles/")
		if slug == "" {
			response.NotFound(w, "vehicle slug required")
			return
		}
		h.HandleGetVehicle(w, r, slug)
	})
}

// applyMiddleware wraps the handler with the middleware chain. CORS runs
// outermost after recovery so even preflights to unknown routes get 200.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	corsConfig := middleware.DefaultCORSConfig()
	if len(s.config.CORSOrigins) > 0 {
		corsConfig.AllowedOrigins = s.config.CORSOrigins
	}

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.CORS(corsConfig),
		middleware.Logger(s.logger),
	)(handler)
}

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		next(w, r)
	}
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		next(w, r)
	}
}

// extractPathParam extracts the first path segment after prefix.
func extractPathParam(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
