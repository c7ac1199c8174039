package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/domain"
	"github.com/kailas-cloud/feedex/internal/domain/classification"
	domfb "github.com/kailas-cloud/feedex/internal/domain/feedback"
	logpkg "github.com/kailas-cloud/feedex/internal/logger"
	"github.com/kailas-cloud/feedex/internal/metrics"
	feedbackuc "github.com/kailas-cloud/feedex/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/feedex/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Services bundles the usecases the HTTP API exposes.
type Services struct {
	Feedback  FeedbackService
	Classify  Classifier
	Analysis  BatchRunner
	Indexing  CorpusIndexer
	Search    Searcher
	Analytics AnalyticsReader
	Health    HealthChecker
}

// Server serves the feedex HTTP API.
type Server struct {
	svc           Services
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. Empty apiKeys disable authentication.
func NewServer(svc Services, apiKeys []string, logger *zap.Logger) *Server {
	return &Server{
		svc:     svc,
		apiKeys: apiKeys,
		logger:  logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
			sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
			sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeDimMismatch),
			sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
			sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
			sentinelHandler(domain.ErrInferenceProviderError, http.StatusBadGateway, codeInferenceError),
		},
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chirouter.NewRouter()
	r.Use(Recoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/feedback", s.CreateFeedback)
	r.Get("/feedback", s.ListFeedback)
	r.Get("/feedback/{id}", s.GetFeedback)
	r.Post("/classify", s.Classify)
	r.Post("/analysis/run", s.RunAnalysis)
	r.Post("/index/all", s.IndexAll)
	r.Get("/search", s.Search)
	r.Get("/analytics", s.Analytics)
	r.Get("/critical", s.Critical)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// CreateFeedback handles POST /feedback.
func (s *Server) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := feedbackuc.Input{
		Source:        req.Source,
		Content:       req.Content,
		Author:        req.Author,
		AttachmentRef: req.AttachmentRef,
	}
	if req.CreatedAt != nil {
		in.CreatedAt = *req.CreatedAt
	}

	item, err := s.svc.Feedback.Create(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/feedback/"+strconv.FormatInt(item.ID(), 10))
	writeJSON(w, http.StatusCreated, feedbackToResponse(item))
}

// GetFeedback handles GET /feedback/{id}.
func (s *Server) GetFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chirouter.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "id must be a positive integer")
		return
	}

	item, err := s.svc.Feedback.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackToResponse(item))
}

// ListFeedback handles GET /feedback?source=&sentiment=&urgency=&offset=&limit=.
func (s *Server) ListFeedback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domfb.Filter{
		Source:    q.Get("source"),
		Sentiment: classification.Sentiment(strings.ToLower(q.Get("sentiment"))),
		Urgency:   classification.Urgency(strings.ToLower(q.Get("urgency"))),
	}
	var ok bool
	if f.Offset, ok = intParam(w, q.Get("offset"), "offset"); !ok {
		return
	}
	if f.Limit, ok = intParam(w, q.Get("limit"), "limit"); !ok {
		return
	}

	page, err := s.svc.Feedback.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]feedbackResponse, len(page.Items))
	for i, it := range page.Items {
		items[i] = feedbackToResponse(it)
	}
	norm, _ := f.Normalize()
	writeJSON(w, http.StatusOK, feedbackListResponse{
		Items:  items,
		Total:  page.Total,
		Offset: norm.Offset,
		Limit:  norm.Limit,
	})
}

// Classify handles POST /classify. It never fails on backend errors: the
// classifier falls back to keyword rules.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "text is required")
		return
	}
	res := s.svc.Classify.Classify(r.Context(), req.Text).Normalize()
	writeJSON(w, http.StatusOK, labelsToResponse(res))
}

// RunAnalysis handles POST /analysis/run.
// A run stopped by cancellation still reports the items it finished.
func (s *Server) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Analysis.RunBatch(r.Context())
	status := runCompleted
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.handleDomainError(w, r, err)
			return
		}
		logpkg.FromContext(r.Context()).Warn("analysis run cancelled",
			zap.String("run_id", res.RunID), zap.Int("processed", res.Processed), zap.Error(err))
		status = runCancelled
	}
	resp := runToResponse(res)
	resp.Status = status
	writeJSON(w, http.StatusOK, resp)
}

// IndexAll handles POST /index/all.
func (s *Server) IndexAll(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Indexing.IndexAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indexToResponse(res))
}

// Search handles GET /search?q=&k=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	k, ok := intParam(w, r.URL.Query().Get("k"), "k")
	if !ok {
		return
	}

	matches, err := s.svc.Search.Search(r.Context(), query, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matchesToResponse(query, matches))
}

// Analytics handles GET /analytics.
func (s *Server) Analytics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Analytics.Snapshot(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Critical handles GET /critical.
func (s *Server) Critical(w http.ResponseWriter, r *http.Request) {
	flags, err := s.svc.Feedback.Critical(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]criticalResponse, len(flags))
	for i, f := range flags {
		out[i] = criticalToResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

// HealthCheck handles GET /health. Only a failing store turns the response into a 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return false
	}
	return true
}

// intParam parses an optional non-negative integer query parameter; empty means 0.
func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
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
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrInferenceProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			if s == domain.ErrInvalidInput {
				// validation messages only carry caller input
				return err.Error()
			}
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

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
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
