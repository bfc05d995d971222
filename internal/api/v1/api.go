// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/streamdex/streamdex/internal/aggregate"
	"github.com/streamdex/streamdex/internal/jobs"
	"github.com/streamdex/streamdex/internal/media"
	"github.com/streamdex/streamdex/internal/provider"
)

// Deps are the services the API surfaces. Engine and Manager may be
// nil; routes that need them answer 503 until they are configured.
type Deps struct {
	Engine   *aggregate.Engine
	Manager  *jobs.Manager
	Registry *provider.Registry
	Bus      EventSource
}

// Server is the v1 API server.
type Server struct {
	deps Deps
	log  *slog.Logger
}

// New creates a new v1 API server.
func New(deps Deps, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, log: log.With("component", "api")}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Providers
	mux.HandleFunc("GET /api/v1/providers", s.listProviders)

	// Search & resolution
	mux.HandleFunc("POST /api/v1/search", s.requireEngine(s.search))
	mux.HandleFunc("GET /api/v1/metadata", s.requireEngine(s.getMetadata))
	mux.HandleFunc("POST /api/v1/streams", s.requireEngine(s.resolveStreams))

	// Downloads
	mux.HandleFunc("POST /api/v1/downloads", s.requireManager(s.startDownload))
	mux.HandleFunc("GET /api/v1/downloads", s.requireManager(s.listDownloads))
	mux.HandleFunc("GET /api/v1/downloads/{id}", s.requireManager(s.getDownload))
	mux.HandleFunc("DELETE /api/v1/downloads/{id}", s.requireManager(s.cancelDownload))

	// Files
	mux.HandleFunc("DELETE /api/v1/files/{name}", s.requireManager(s.deleteFile))

	// Events
	mux.HandleFunc("GET /api/v1/events", s.streamEvents)

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// Handlers

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	entries := s.deps.Registry.ListEnabled()
	resp := make([]providerResponse, len(entries))
	for i, e := range entries {
		caps := make([]string, len(e.Descriptor.Capabilities))
		for j, c := range e.Descriptor.Capabilities {
			caps[j] = string(c)
		}
		resp[i] = providerResponse{
			Value:        e.Descriptor.Value,
			Name:         e.Descriptor.Name,
			Capabilities: caps,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// search fans the query out and waits for every provider to settle.
// The response carries the merged visible list plus each provider's
// terminal status, so clients can show partial-failure detail.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "query is required")
		return
	}

	h, err := s.deps.Engine.Search(r.Context(), req.Query, req.Page)
	if err != nil {
		if errors.Is(err, aggregate.ErrNoProviders) {
			writeError(w, http.StatusServiceUnavailable, "NO_PROVIDERS", "no searchable providers enabled")
			return
		}
		writeError(w, http.StatusInternalServerError, "SEARCH_ERROR", err.Error())
		return
	}

	if err := h.Wait(r.Context()); err != nil {
		// Client went away; the handle's own cancellation follows from
		// the request context.
		return
	}

	results := h.Results()
	resp := searchResponse{
		RequestID: h.ID,
		Items:     h.Items(),
		Providers: make([]providerResult, 0, len(results)),
	}
	for _, res := range results {
		pr := providerResult{Provider: res.Provider, Status: string(res.Status), Items: len(res.Items)}
		if res.Err != nil {
			pr.Error = res.Err.Error()
		}
		resp.Providers = append(resp.Providers, pr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getMetadata(w http.ResponseWriter, r *http.Request) {
	providerValue := r.URL.Query().Get("provider")
	link := r.URL.Query().Get("link")
	if providerValue == "" || link == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "provider and link are required")
		return
	}

	md, err := s.deps.Engine.Metadata(r.Context(), providerValue, link)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Content not found")
			return
		}
		writeError(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) resolveStreams(w http.ResponseWriter, r *http.Request) {
	var req streamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.Provider == "" || req.Link == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "provider and link are required")
		return
	}
	mediaType := media.Type(req.Type)
	if mediaType == "" {
		mediaType = media.TypeMovie
	}

	streams, err := s.deps.Engine.Streams(r.Context(), req.Provider, req.Link, mediaType)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Content not found")
			return
		}
		writeError(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	// An empty list is a valid answer: content exists, no servers now.
	writeJSON(w, http.StatusOK, streamsResponse{Streams: streams})
}

func (s *Server) startDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	kind := jobs.KindFile
	if req.Kind == string(jobs.KindHLS) {
		kind = jobs.KindHLS
	}

	id, err := s.deps.Manager.Start(jobs.Request{
		URL:      req.URL,
		FileName: req.FileName,
		FileType: req.FileType,
		Headers:  req.Headers,
		Kind:     kind,
	})
	if err != nil {
		if errors.Is(err, jobs.ErrEmptyURL) {
			writeError(w, http.StatusBadRequest, "MISSING_URL", "url is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "DOWNLOAD_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, downloadResponse{ID: id})
}

func (s *Server) listDownloads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Manager.List())
}

func (s *Server) getDownload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	job, err := s.deps.Manager.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Download not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// cancelDownload cancels by bare job id. The id alone routes the
// cancellation; ids below 1000 are file transfers, 1000 and up are HLS.
// With ?purge=true the terminal job record is dropped as well.
func (s *Server) cancelDownload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	s.deps.Manager.Cancel(id)

	if r.URL.Query().Get("purge") == "true" {
		// Cancel is asynchronous; purge only settles already-terminal jobs.
		if err := s.deps.Manager.Remove(id); err != nil && !errors.Is(err, jobs.ErrNotFound) {
			writeError(w, http.StatusConflict, "STILL_RUNNING", err.Error())
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "file name is required")
		return
	}

	if err := s.deps.Manager.Delete(name); err != nil {
		writeError(w, http.StatusInternalServerError, "DELETE_ERROR", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: "ok"}
	if s.deps.Registry != nil {
		resp.Providers = len(s.deps.Registry.ListEnabled())
	}
	if s.deps.Manager != nil {
		resp.Downloads = len(s.deps.Manager.List())
	}
	writeJSON(w, http.StatusOK, resp)
}
