package v1

import "net/http"

// requireEngine wraps a handler and returns 503 if the aggregation
// engine is not configured.
func (s *Server) requireEngine(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Engine == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Aggregation engine not configured")
			return
		}
		next(w, r)
	}
}

// requireManager wraps a handler and returns 503 if the download
// manager is not configured.
func (s *Server) requireManager(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Manager == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Download manager not configured")
			return
		}
		next(w, r)
	}
}
