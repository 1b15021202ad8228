package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/catalogsearch/internal/logger"
	healthuc "github.com/kailas-cloud/catalogsearch/internal/usecase/health"
)

// maxReplaceBodyBytes bounds the PUT /catalog body.
const maxReplaceBodyBytes = 32 << 20

// VersionHeader carries the version of the snapshot a response was computed from.
const VersionHeader = "X-Catalog-Version"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the catalog search HTTP API.
type Server struct {
	search        Searcher
	catalog       CatalogManager
	health        HealthChecker
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, catalog CatalogManager, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:  search,
		catalog: catalog,
		health:  health,
		limits:  request.DefaultLimits(),
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		snapshotErrorHandler,
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidSnapshot, http.StatusBadRequest, ErrorCodeInvalidSnapshot),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrSnapshotNotLoaded, http.StatusServiceUnavailable, ErrorCodeSnapshotNotLoaded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, ErrorCodeSourceUnavailable),
	}
	return s
}

// WithLimits sets the page size bounds of search requests.
func (s *Server) WithLimits(limits request.Limits) *Server {
	s.limits = limits
	return s
}

// Register mounts the API on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/search", s.SearchCatalog)
		r.Get("/catalog/items", s.ListItems)
		r.Get("/catalog/suggest", s.Suggest)
		r.Put("/catalog", s.ReplaceCatalog)
		r.Post("/catalog/refresh", s.RefreshCatalog)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// SearchCatalog handles GET /api/v1/catalog/search.
func (s *Server) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	var (
		q         *string
		limit     *int
		threshold *float64
	)
	if !bindQuery(w, r, "q", &q) || !bindQuery(w, r, "limit", &limit) || !bindQuery(w, r, "threshold", &threshold) {
		return
	}

	req, err := s.limits.New(deref(q), deref(limit), deref(threshold))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set(VersionHeader, page.Version)
	writeJSON(w, http.StatusOK, pageToDTO(page))
}

// ListItems handles GET /api/v1/catalog/items.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	page, err := s.search.Items(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set(VersionHeader, page.Version)
	writeJSON(w, http.StatusOK, pageToDTO(page))
}

// Suggest handles GET /api/v1/catalog/suggest.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	var (
		q     *string
		limit *int
	)
	if !bindQuery(w, r, "q", &q) || !bindQuery(w, r, "limit", &limit) {
		return
	}

	suggestions, err := s.search.Suggest(r.Context(), deref(q), deref(limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestionsToDTO(suggestions))
}

// ReplaceCatalog handles PUT /api/v1/catalog.
func (s *Server) ReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	var req ReplaceRequest
	body := http.MaxBytesReader(w, r.Body, maxReplaceBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items := make([]domcat.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = itemFromDTO(it)
	}

	snap, err := s.catalog.Replace(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set(VersionHeader, snap.Version())
	w.WriteHeader(http.StatusNoContent)
}

// RefreshCatalog handles POST /api/v1/catalog/refresh.
func (s *Server) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Refresh(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set(VersionHeader, snap.Version())
	writeJSON(w, http.StatusOK, SnapshotResponse{Version: snap.Version(), Items: snap.Len()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindQuery binds an optional form-style query parameter into dest.
// On failure it writes a 400 and returns false.
func bindQuery(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %v", name, err))
		return false
	}
	return true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrInvalidSnapshot,
		domain.ErrNotFound,
		domain.ErrSnapshotNotLoaded,
		domain.ErrRateLimited,
		domain.ErrSourceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// snapshotErrorHandler reports which item made a snapshot invalid.
func snapshotErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var se *domain.SnapshotError
	if !errors.As(err, &se) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"code":     ErrorCodeInvalidSnapshot,
		"message":  se.Error(),
		"position": se.Position,
		"id":       se.ID,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
