// Package chi serves the agent HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vrexx/vrexx/internal/domain"
	domprop "github.com/vrexx/vrexx/internal/domain/property"
	"github.com/vrexx/vrexx/internal/logger"
	"github.com/vrexx/vrexx/internal/metrics"
	healthuc "github.com/vrexx/vrexx/internal/usecase/health"
	propertyuc "github.com/vrexx/vrexx/internal/usecase/property"
)

const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the agent API.
type Server struct {
	agent         Agent
	catalog       Catalog
	logs          InteractionLog
	health        HealthChecker
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. An empty apiKeys list disables auth.
func NewServer(
	agent Agent,
	catalog Catalog,
	logs InteractionLog,
	health HealthChecker,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		agent:   agent,
		catalog: catalog,
		logs:    logs,
		health:  health,
		apiKeys: apiKeys,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProvider),
		sentinelHandler(domain.ErrVectorDimMismatch,
			http.StatusInternalServerError, ErrorCodeVectorDimMismatch),
	}
	return s
}

// Router builds the chi router with middleware and all routes, including the
// Italian aliases kept for existing clients.
func (s *Server) Router() http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(APIKeyMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/ask", s.Ask)
	r.Post("/chiedi-agente", s.Ask)
	r.Post("/properties", s.AddProperty)
	r.Post("/aggiungi-immobile", s.AddProperty)
	r.Get("/properties", s.ListProperties)
	r.Get("/lista-immobili", s.ListProperties)
	r.Get("/logs", s.ListLogs)
	r.Get("/visualizza-log", s.ListLogs)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
	return r
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Status:       "online",
		AuthRequired: AuthEnabled(s.apiKeys),
	})
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ans, err := s.agent.Ask(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:       ans.Text,
		RoutingTrace: ans.Decision.Trace(),
	})
}

// AddProperty handles POST /properties.
func (s *Server) AddProperty(w http.ResponseWriter, r *http.Request) {
	var req PropertyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "price is required")
		return
	}

	p, err := s.catalog.Add(r.Context(), propertyuc.Draft{
		Address:     req.Address,
		Price:       *req.Price,
		Description: req.Description,
		Media: domprop.Media{
			PhotoURL:    req.PhotoURL,
			Video360URL: req.Video360URL,
			RenderURL:   req.RenderURL,
		},
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, PropertySavedResponse{Status: "property saved", ID: p.ID()})
}

// ListProperties handles GET /properties.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	params, ok := bindListParams(w, r)
	if !ok {
		return
	}

	list, err := s.catalog.List(r.Context(), derefInt(params.Limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]Property, len(list))
	for i := range list {
		items[i] = propertyToDTO(&list[i])
	}
	writeJSON(w, http.StatusOK, PropertyListResponse{Total: len(items), Items: items})
}

// ListLogs handles GET /logs.
func (s *Server) ListLogs(w http.ResponseWriter, r *http.Request) {
	params, ok := bindListParams(w, r)
	if !ok {
		return
	}

	records, err := s.logs.List(r.Context(), derefInt(params.Limit))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logs := make([]LogEntry, len(records))
	for i, rec := range records {
		logs[i] = logEntryToDTO(rec)
	}
	writeJSON(w, http.StatusOK, LogListResponse{Logs: logs})
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

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func bindListParams(w http.ResponseWriter, r *http.Request) (ListParams, bool) {
	var params ListParams
	err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid format for parameter limit")
		return params, false
	}
	return params, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-safe message. Validation errors keep
// their detail; everything else is reduced to its sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorDimMismatch,
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

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}
