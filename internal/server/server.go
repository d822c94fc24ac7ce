// Package server provides the gateway's HTTP surface: auth, page data for the
// guarded pages, and the compile route.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/compile"
	"github.com/akshayks13/genai-frontend-sub000/internal/dashboard"
	"github.com/akshayks13/genai-frontend-sub000/internal/explore"
	"github.com/akshayks13/genai-frontend-sub000/internal/listings"
	"github.com/akshayks13/genai-frontend-sub000/internal/observability"
	"github.com/akshayks13/genai-frontend-sub000/internal/resume"
	"github.com/akshayks13/genai-frontend-sub000/internal/roadmap"
	"github.com/akshayks13/genai-frontend-sub000/internal/server/middleware"
	"github.com/akshayks13/genai-frontend-sub000/internal/server/ratelimit"
	"github.com/akshayks13/genai-frontend-sub000/internal/services"
	"github.com/akshayks13/genai-frontend-sub000/internal/session"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// GoogleTokenHeader carries the caller's Google OAuth token for Calendar and
// Tasks.
const GoogleTokenHeader = "X-Google-Token"

// Config holds server configuration
type Config struct {
	Port               int
	CORSAllowedOrigins []string
	SessionTTL         time.Duration
	CookieSecure       bool
}

// Deps are the services the handlers call.
type Deps struct {
	Auth      *services.Auth
	Profile   *services.Profile
	Sessions  session.Store
	Guard     middleware.Checker
	Compiler  *compile.Compiler
	Explore   *explore.Service
	Resume    *resume.Service
	Listings  *listings.Service
	Dashboard *dashboard.Service
	Roadmaps  *roadmap.Service
	Limiter   *ratelimit.Limiter
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg        Config
	deps       Deps
	logger     *zap.Logger
	validator  *validator.Validate
	guard      *middleware.Guard
	handler    http.Handler
	httpServer *http.Server
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:       cfg,
		deps:      deps,
		logger:    deps.Logger,
		validator: validator.New(),
		guard:     middleware.NewGuard(deps.Guard, deps.Sessions, deps.Logger, deps.Metrics),
	}

	mux := http.NewServeMux()
	s.route(mux, "GET /health", false, s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	// Auth
	s.route(mux, "POST /auth/signup", false, s.handleSignup)
	s.route(mux, "POST /auth/login", false, s.handleLogin)
	s.route(mux, "POST /auth/forgot-password", false, s.handleForgotPassword)
	s.route(mux, "POST /auth/reset-password", false, s.handleResetPassword)
	s.route(mux, "POST /auth/logout", false, s.handleLogout)
	s.route(mux, "GET /auth/session", false, s.handleSession)

	// Compile route
	s.route(mux, "POST /api/compile", false, s.handleCompile)

	// Guarded pages
	s.route(mux, "GET /dashboard", true, s.handleDashboard)
	s.route(mux, "GET /profile", true, s.handleGetProfile)
	s.route(mux, "PUT /profile", true, s.handleUpdateProfile)
	s.route(mux, "GET /careers", true, s.handleCareers)
	s.route(mux, "GET /trends", true, s.handleTrends)
	s.route(mux, "GET /roadmap", true, s.handleListRoadmaps)
	s.route(mux, "POST /roadmap", true, s.handleCreateRoadmap)
	s.route(mux, "POST /roadmap/{id}/sync", true, s.handleSyncRoadmap)
	s.route(mux, "GET /explore/messages", true, s.handleListMessages)
	s.route(mux, "POST /explore/messages", true, s.handleSendMessage)
	s.route(mux, "DELETE /explore/messages", true, s.handleResetMessages)
	s.route(mux, "GET /resume", true, s.handleGetResume)
	s.route(mux, "PUT /resume", true, s.handleSaveResume)
	s.route(mux, "POST /resume/compile", true, s.handleCompileResume)
	s.route(mux, "POST /resume/download", true, s.handleDownloadResume)
	s.route(mux, "POST /resume/upload", true, s.handleUploadResume)
	s.route(mux, "POST /resume/enhance", true, s.handleEnhanceResume)

	s.handler = s.withRecovery(s.withCORS(s.withRateLimit(mux)))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second, // Compiles can be slow
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the complete middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully and releases
// the limiter and session store.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.deps.Limiter.Stop()
	if s.deps.Sessions != nil {
		if cerr := s.deps.Sessions.Close(); cerr != nil {
			s.logger.Warn("failed to close session store", zap.Error(cerr))
		}
	}
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// route registers h under pattern with request logging and metrics, behind
// the auth guard when guarded.
func (s *Server) route(mux *http.ServeMux, pattern string, guarded bool, h http.HandlerFunc) {
	var handler http.Handler = h
	if guarded {
		handler = s.guard.Require(handler)
	}
	mux.Handle(pattern, s.instrument(pattern, handler))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// instrument logs each request and records it under the route pattern.
func (s *Server) instrument(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", pattern),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
		if m := s.deps.Metrics; m != nil {
			m.Requests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
			m.RequestDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())
		}
	})
}

// withRecovery turns handler panics into 500s.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS allows the configured UI origins to call the gateway with cookies.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", GoogleTokenHeader},
		ExposedHeaders:   []string{"X-Compile-Source", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.deps.Limiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// rawResponse relays a backend JSON body unchanged.
func (s *Server) rawResponse(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure logs err and writes the caller-facing version of it.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error, generic string) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.errorResponse(w, status, clientMessage(err, generic))
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is not trusted; the remote address is used as-is.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("tier", info.Tier),
		zap.String("path", r.URL.Path),
	)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// decodeJSON reads a JSON body into v and validates it.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody)).Decode(v); err != nil {
		return &ErrBadRequest{Message: "Invalid request body"}
	}
	if err := s.validator.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// maxJSONBody bounds JSON request bodies; resume sources are the largest.
const maxJSONBody = 2 << 20

// googleToken returns the caller's Google OAuth token, if any.
func googleToken(r *http.Request) string {
	return r.Header.Get(GoogleTokenHeader)
}
