package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/logsift/internal/domain"
	"github.com/kailas-cloud/logsift/internal/domain/match"
	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
	logpkg "github.com/kailas-cloud/logsift/internal/logger"
	"github.com/kailas-cloud/logsift/internal/source"
	healthuc "github.com/kailas-cloud/logsift/internal/usecase/health"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeUnauthorized       = "unauthorized"
	codeDiagnosticNotFound = "diagnostic_not_found"
	codeSourceUnavailable  = "source_unavailable"
	codeInternalError      = "internal_error"
)

// SearchService runs batch and single searches.
type SearchService interface {
	Search(ctx context.Context, set rule.Set, names []string) (match.Result, error)
	First(ctx context.Context, name string, p predicate.Predicate) (predicate.Match, bool, error)
}

// DiagnosticLister lists the diagnostics available for searching.
type DiagnosticLister interface {
	List(ctx context.Context) ([]domain.Diagnostic, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search API over HTTP.
type Server struct {
	search        SearchService
	sources       DiagnosticLister
	health        *healthuc.Service
	rules         rule.Set
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. rules is the startup rule set
// applied when a search request carries none.
func NewServer(
	search SearchService,
	sources DiagnosticLister,
	health *healthuc.Service,
	rules rule.Set,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		sources: sources,
		health:  health,
		rules:   rules,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDiagnosticNotFound, http.StatusNotFound, codeDiagnosticNotFound),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, codeSourceUnavailable),
		sourceErrorHandler,
	}
	return s
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/search/first", s.SearchFirst)
		r.Get("/diagnostics", s.ListDiagnostics)
	})
}

// searchRequest is the POST /api/v1/search body. Rules follow the mapping
// wire form; an omitted rules field selects the startup rule set.
type searchRequest struct {
	Rules json.RawMessage `json:"rules"`
	Names []string        `json:"names"`
}

type searchResponse struct {
	Matches     match.Result `json:"matches"`
	Diagnostics int          `json:"diagnostics"`
	Lines       int          `json:"lines"`
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	set := s.rules
	if req.Rules != nil {
		parsed, err := rule.ParseMapping(req.Rules)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		set = parsed
	}

	result, err := s.search.Search(r.Context(), set, req.Names)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if result == nil {
		result = match.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Matches:     result,
		Diagnostics: len(result),
		Lines:       result.TotalLines(),
	})
}

// firstRequest is the POST /api/v1/search/first body.
type firstRequest struct {
	Name      string          `json:"name"`
	Predicate json.RawMessage `json:"predicate"`
}

type matchBody struct {
	Fragment  string `json:"fragment"`
	Line      string `json:"line"`
	LineIndex int    `json:"line_index"`
}

type firstResponse struct {
	Found bool       `json:"found"`
	Match *matchBody `json:"match,omitempty"`
}

// SearchFirst handles POST /api/v1/search/first.
func (s *Server) SearchFirst(w http.ResponseWriter, r *http.Request) {
	var req firstRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "name is required")
		return
	}
	if req.Predicate == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "predicate is required")
		return
	}

	p, err := predicate.Parse(req.Predicate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	m, found, err := s.search.First(r.Context(), req.Name, p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := firstResponse{Found: found}
	if found {
		resp.Match = &matchBody{
			Fragment:  m.Fragment,
			Line:      m.Line,
			LineIndex: m.LineIndex,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type diagnosticsResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

// ListDiagnostics handles GET /api/v1/diagnostics.
func (s *Server) ListDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags, err := s.sources.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	names := make([]string, 0, len(diags))
	for _, d := range diags {
		names = append(names, d.Name())
	}
	sort.Strings(names)

	writeJSON(w, http.StatusOK, diagnosticsResponse{Items: names, Total: len(names)})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
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

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    code,
		Message: message,
	}})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDiagnosticNotFound,
		domain.ErrNoTextContent,
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
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// sourceErrorHandler maps source operation failures to 502 without leaking
// backend details.
func sourceErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var srcErr *source.Error
	if !errors.As(err, &srcErr) {
		return false
	}
	writeError(w, http.StatusBadGateway, codeSourceUnavailable, "diagnostic source unavailable")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Prefer the request-scoped logger so the line carries the request id.
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
