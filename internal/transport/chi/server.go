// Package chi is the HTTP boundary: query-string and JSON parsing, taxonomy
// validation, and sentinel-to-status mapping around the usecase services.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tastebud-labs/recipedex/internal/domain"
	"github.com/tastebud-labs/recipedex/internal/logger"
	"github.com/tastebud-labs/recipedex/internal/domain/search"
	"github.com/tastebud-labs/recipedex/internal/metrics"
	"github.com/tastebud-labs/recipedex/internal/usecase/recommend"
	"github.com/tastebud-labs/recipedex/internal/usecase/suggest"
)

const defaultSuggestLimit = 5

// Recommender runs the hybrid retrieval searches.
type Recommender interface {
	SearchByIngredients(ctx context.Context, q search.Query) ([]recommend.RankedRecipe, error)
	SearchByName(ctx context.Context, q search.Query) ([]recommend.RankedRecipe, error)
}

// Suggester serves ingredient autocomplete.
type Suggester interface {
	Suggest(ctx context.Context, input string, limit int) ([]suggest.Suggestion, error)
}

// Cataloger applies recipe mutations.
type Cataloger interface {
	Create(ctx context.Context, in domain.RecipeInput) (domain.Recipe, *domain.SyncWarning, error)
	Update(ctx context.Context, id int64, p domain.RecipePatch) (domain.Recipe, *domain.SyncWarning, error)
	Delete(ctx context.Context, id int64) (*domain.SyncWarning, error)
}

// HealthCheck is one named dependency probe.
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	recommender   Recommender
	suggester     Suggester
	catalog       Cataloger
	checks        []HealthCheck
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommender Recommender,
	suggester Suggester,
	catalog Cataloger,
	checks []HealthCheck,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommender: recommender,
		suggester:   suggester,
		catalog:     catalog,
		checks:      checks,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownCategory, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnknownCuisine, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEncoding, http.StatusBadGateway, codeEncodingFailed),
		sentinelHandler(domain.ErrRetrieval, http.StatusServiceUnavailable, codeRetrievalFailed),
		sentinelHandler(domain.ErrHydration, http.StatusServiceUnavailable, codeHydrationFailed),
	}
	return s
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router(apiKeys []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer())
	r.Use(s.requestLogger())
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/search/ingredients", s.SearchByIngredients)
	r.Get("/search/name", s.SearchByName)
	r.Get("/suggest", s.Suggest)

	r.Post("/recipes", s.CreateRecipe)
	r.Patch("/recipes/{id}", s.PatchRecipe)
	r.Delete("/recipes/{id}", s.DeleteRecipe)

	return r
}

// SearchByIngredients handles GET /search/ingredients.
func (s *Server) SearchByIngredients(w http.ResponseWriter, r *http.Request) {
	q, ok := s.parseQuery(w, r, false)
	if !ok {
		return
	}

	ranked, err := s.recommender.SearchByIngredients(r.Context(), q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("ingredients", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues("ingredients", "success").Inc()
	metrics.SearchCandidates.WithLabelValues("ingredients").Observe(float64(len(ranked)))
	writeJSON(w, http.StatusOK, searchToDTO(ranked))
}

// SearchByName handles GET /search/name.
func (s *Server) SearchByName(w http.ResponseWriter, r *http.Request) {
	q, ok := s.parseQuery(w, r, true)
	if !ok {
		return
	}

	ranked, err := s.recommender.SearchByName(r.Context(), q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("names", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues("names", "success").Inc()
	metrics.SearchCandidates.WithLabelValues("names").Observe(float64(len(ranked)))
	writeJSON(w, http.StatusOK, searchToDTO(ranked))
}

// parseQuery builds a validated search.Query from the query string.
func (s *Server) parseQuery(w http.ResponseWriter, r *http.Request, withIngredients bool) (search.Query, bool) {
	params := r.URL.Query()

	text := strings.TrimSpace(params.Get("q"))
	if text == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter q is required")
		return search.Query{}, false
	}

	k := 0
	if raw := params.Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "k must be a positive integer")
			return search.Query{}, false
		}
		k = parsed
	}

	category := strings.TrimSpace(params.Get("category"))
	if category != "" && !domain.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "unknown category: "+category)
		return search.Query{}, false
	}
	cuisine := strings.TrimSpace(params.Get("cuisine"))
	if cuisine != "" && !domain.ValidCuisine(cuisine) {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "unknown cuisine: "+cuisine)
		return search.Query{}, false
	}

	var ingredients []string
	if withIngredients {
		if raw := strings.TrimSpace(params.Get("ingredients")); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part != "" {
					ingredients = append(ingredients, part)
				}
			}
		}
	}

	q, err := search.NewQuery(text, k, category, cuisine, ingredients)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return search.Query{}, false
	}
	return q, true
}

// Suggest handles GET /suggest.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	input := strings.TrimSpace(params.Get("q"))
	if input == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter q is required")
		return
	}

	limit := defaultSuggestLimit
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	suggestions, err := s.suggester.Suggest(r.Context(), input, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsToDTO(suggestions))
}

// CreateRecipe handles POST /recipes.
func (s *Server) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, warn, err := s.catalog.Create(r.Context(), req.toInput())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if warn != nil {
		metrics.IndexSyncWarningsTotal.WithLabelValues(warn.Op).Inc()
	}

	w.Header().Set("Location", "/recipes/"+strconv.FormatInt(rec.ID, 10))
	writeJSON(w, http.StatusCreated, mutationResponse{
		Recipe:  recipeToDTO(rec),
		Warning: warningText(warn),
	})
}

// PatchRecipe handles PATCH /recipes/{id}.
func (s *Server) PatchRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, warn, err := s.catalog.Update(r.Context(), id, req.toPatch())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if warn != nil {
		metrics.IndexSyncWarningsTotal.WithLabelValues(warn.Op).Inc()
	}

	writeJSON(w, http.StatusOK, mutationResponse{
		Recipe:  recipeToDTO(rec),
		Warning: warningText(warn),
	})
}

// DeleteRecipe handles DELETE /recipes/{id}.
func (s *Server) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	warn, err := s.catalog.Delete(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if warn != nil {
		metrics.IndexSyncWarningsTotal.WithLabelValues(warn.Op).Inc()
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		Deleted: true,
		Warning: warningText(warn),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.checks))
	healthy := true
	for _, c := range s.checks {
		if err := c.Probe(r.Context()); err != nil {
			checks[c.Name] = "unhealthy"
			healthy = false
			s.logger.Warn("health check failed", zap.String("check", c.Name), zap.Error(err))
		} else {
			checks[c.Name] = "healthy"
		}
	}

	status, httpStatus := "healthy", http.StatusOK
	if !healthy {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "recipe id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownCategory,
		domain.ErrUnknownCuisine,
		domain.ErrInvalidInput,
		domain.ErrNotFound,
		domain.ErrEncoding,
		domain.ErrRetrieval,
		domain.ErrHydration,
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// requestLogger emits a canonical log line per request and propagates
// X-Request-ID. The per-request logger is stored in the context for handlers
// further down the chain.
func (s *Server) requestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := middleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := s.logger.With(zap.String("request_id", requestID))
			ctx := logger.ContextWithLogger(r.Context(), reqLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

// recoverer converts panics into 500 responses with a logged stack.
func (s *Server) recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					s.logger.Error("panic in handler",
						zap.Any("panic", rec), zap.Stack("stack"), zap.String("path", r.URL.Path))
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
