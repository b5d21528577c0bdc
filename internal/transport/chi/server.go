package chi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nearby/internal/domain"
	domrl "github.com/kailas-cloud/nearby/internal/domain/ratelimit"
	"github.com/kailas-cloud/nearby/internal/domain/search/request"
	gen "github.com/kailas-cloud/nearby/internal/transport/generated"
	healthuc "github.com/kailas-cloud/nearby/internal/usecase/health"
	searchuc "github.com/kailas-cloud/nearby/internal/usecase/search"
	"github.com/kailas-cloud/nearby/internal/version"
)

// SearchFunction is the rate-limit function name of the search endpoints.
const SearchFunction = "search"

// searchRoute is the route pattern shared by both search operations.
const searchRoute = "/api/v1/search"

// Error codes returned in the "error" field.
const (
	codeValidation    = gen.ErrorResponseErrorValidationError
	codeConfiguration = gen.ErrorResponseErrorConfigurationError
	codeEmbedding     = gen.ErrorResponseErrorEmbeddingUnavailable
	codeRateLimited   = gen.ErrorResponseErrorRateLimited
	codeUnauthorized  = gen.ErrorResponseErrorUnauthorized
	codeInternal      = gen.ErrorResponseErrorInternalError
)

// Searcher runs the search pipeline.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Result, error)
}

// HealthChecker aggregates dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Limiter decides whether a caller may proceed.
type Limiter interface {
	Check(ctx context.Context, key domrl.Key, metadata map[string]string) domrl.Decision
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var _ gen.ServerInterface = (*Server)(nil)

// Server serves the search API.
type Server struct {
	search        Searcher
	health        HealthChecker
	limiter       Limiter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Option configures the Server.
type Option func(*Server)

// WithRateLimiter guards the search endpoints with l.
func WithRateLimiter(l Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	for _, o := range opts {
		o(s)
	}
	s.errorHandlers = []errorHandler{
		rateLimitHandler,
		precise(domain.ErrValidation, http.StatusBadRequest, codeValidation),
		precise(domain.ErrConfiguration, http.StatusInternalServerError, codeConfiguration),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbedding,
			"failed to process search query, please try again"),
	}
	return s
}

// Mount registers the generated API routes on r. Only the search routes are
// rate limited.
func (s *Server) Mount(r chi.Router) {
	var mws []gen.MiddlewareFunc
	if s.limiter != nil {
		mws = append(mws, limitRoutes(map[string]string{searchRoute: SearchFunction}, s.RateLimitMiddleware))
	}
	gen.HandlerWithOptions(s, gen.ChiServerOptions{
		BaseRouter:       r,
		Middlewares:      mws,
		ErrorHandlerFunc: s.bindError,
	})
}

// limitRoutes applies the limiter middleware to the matched route patterns
// listed in functions, keyed by their rate-limit function name.
func limitRoutes(functions map[string]string, limit func(string) func(http.Handler) http.Handler) gen.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		limited := make(map[string]http.Handler, len(functions))
		for pattern, fn := range functions {
			limited[pattern] = limit(fn)(next)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if h, ok := limited[rctx.RoutePattern()]; ok {
					h.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bindError turns query binding failures into validation errors.
func (s *Server) bindError(w http.ResponseWriter, _ *http.Request, err error) {
	var (
		required *gen.RequiredParamError
		format   *gen.InvalidParamFormatError
	)
	msg := "invalid query parameters"
	switch {
	case errors.As(err, &required) && required.ParamName == "q":
		msg = "query is required"
	case errors.As(err, &required):
		msg = required.ParamName + " is required"
	case errors.As(err, &format) && format.ParamName == "count":
		msg = "count must be an integer"
	case errors.As(err, &format):
		msg = format.ParamName + " must be a number"
	}
	s.logger.Debug("bind query", zap.Error(err))
	writeError(w, http.StatusBadRequest, codeValidation, msg)
}

// SearchPost handles POST /api/v1/search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var body gen.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}
	s.runSearch(w, r, request.Params{
		Query:     body.Query,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Threshold: body.MatchThreshold,
		Count:     body.MatchCount,
	})
}

// SearchGet handles GET /api/v1/search?q=&lat=&lng=&threshold=&count=.
// Number syntax is checked by the binder; ranges by request.New.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request, params gen.SearchGetParams) {
	s.runSearch(w, r, request.Params{
		Query:     params.Q,
		Latitude:  params.Lat,
		Longitude: params.Lng,
		Threshold: params.Threshold,
		Count:     params.Count,
	})
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, p request.Params) {
	req, err := request.New(p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSearchResponse(&res, time.Now()))
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

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status:  gen.HealthResponseStatus(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseError, message string) {
	writeJSON(w, status, gen.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error
// and answers with a fixed client message.
func sentinelHandler(sentinel error, status int, code gen.ErrorResponseError, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message)
		return true
	}
}

// precise is like sentinelHandler but returns the error text, which is safe for
// validation and configuration errors.
func precise(sentinel error, status int, code gen.ErrorResponseError) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// rateLimitHandler handles ErrRateLimited with the standard rate-limit headers.
func rateLimitHandler(w http.ResponseWriter, err error) bool {
	var rle *domain.RateLimitError
	if !errors.As(err, &rle) {
		return false
	}
	retry := int(math.Ceil(rle.RetryAfter.Seconds()))
	setRateLimitHeaders(w, rle.Limit, 0, rle.ResetAt)
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	writeError(w, http.StatusTooManyRequests, codeRateLimited,
		"too many requests, retry after "+strconv.Itoa(retry)+" seconds")
	return true
}

func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int, resetAt time.Time) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
