package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/findr-ai/findr/internal/analyzer"
	"github.com/findr-ai/findr/internal/config"
	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/server/middleware"
	"github.com/findr-ai/findr/internal/server/ratelimit"
)

// Store is the database surface the HTTP handlers depend on.
type Store interface {
	UserStore

	Ping(ctx context.Context) error
	Migrate(ctx context.Context, dir string) ([]string, error)

	UpdateUserProfile(ctx context.Context, id uuid.UUID, fullName, avatarURL string) (*db.UserProfile, error)

	CreateJob(ctx context.Context, input db.JobCreateInput) (*db.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobsByCompany(ctx context.Context, companyID uuid.UUID, opts db.ListJobsOptions) ([]db.Job, int, error)
	UpdateJob(ctx context.Context, id uuid.UUID, input db.JobUpdateInput) (*db.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) error
	SetJobPublicLink(ctx context.Context, id uuid.UUID, publicLinkID string) error

	CreateApplicant(ctx context.Context, input db.ApplicantCreateInput) (*db.Applicant, error)
	GetApplicant(ctx context.Context, id uuid.UUID) (*db.Applicant, error)
	ListApplicantsByJob(ctx context.Context, jobID uuid.UUID, opts db.ListApplicantsOptions) ([]db.Applicant, int, error)
	CountApplicantsByStatus(ctx context.Context, jobID uuid.UUID) (map[string]int, error)

	UpsertShareLink(ctx context.Context, input db.ShareLinkInput) (*db.ShareLink, error)
	GetShareLink(ctx context.Context, slug string) (*db.ShareLink, error)
	ListShareLinksByCompany(ctx context.Context, companyID uuid.UUID) ([]db.ShareLink, error)
	DeleteShareLink(ctx context.Context, slug string, companyID uuid.UUID) error

	GetCompanyProfile(ctx context.Context, userID uuid.UUID) (*db.CompanyProfile, error)
	UpsertCompanyProfile(ctx context.Context, userID uuid.UUID, input db.CompanyProfileInput) (*db.CompanyProfile, error)
	GetApplicantProfile(ctx context.Context, userID uuid.UUID) (*db.ApplicantProfile, error)
	UpsertApplicantProfile(ctx context.Context, userID uuid.UUID, input db.ApplicantProfileInput) (*db.ApplicantProfile, error)
}

// ResumeUploader stores resume files and hands back public URLs.
type ResumeUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (key, url string, err error)
}

// Evaluator starts asynchronous resume evaluations.
type Evaluator interface {
	Begin(ctx context.Context, applicantID uuid.UUID, req analyzer.SubmitRequest) error
}

// LinkCache caches resolved share links for the public application page.
type LinkCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// AnalyzerPinger reports whether the external analyzer is reachable.
type AnalyzerPinger interface {
	Health(ctx context.Context) error
}

// Deps bundles the collaborators the server needs. Cache, Resumes, and
// Evaluator may be nil in tests that don't exercise them.
type Deps struct {
	DB        Store
	Resumes   ResumeUploader
	Evaluator Evaluator
	Cache     LinkCache
	Analyzer  AnalyzerPinger
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          Store
	resumes     ResumeUploader
	evaluator   Evaluator
	cache       LinkCache
	analyzer    AnalyzerPinger
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	googleAuth  *GoogleAuthHandler
	cfg         *config.Config
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) (*Server, error) {
	s := &Server{
		db:        deps.DB,
		resumes:   deps.Resumes,
		evaluator: deps.Evaluator,
		cache:     deps.Cache,
		analyzer:  deps.Analyzer,
		logger:    deps.Logger,
		cfg:       cfg,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(deps.DB, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)

	s.authHandler = NewAuthHandler(s.userService, s.jwtService)
	s.googleAuth = NewGoogleAuthHandler(cfg.OAuth, s.userService, s.jwtService, s.logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request router.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), s.jwtService.CookieName())
	companyOnly := func(h http.HandlerFunc) http.Handler {
		return requireAuth(middleware.RequireRole(db.RoleCompany, h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /auth/signout", s.authHandler.Signout)
	mux.Handle("GET /auth/me", requireAuth(http.HandlerFunc(s.handleMe)))
	mux.Handle("PUT /auth/password", requireAuth(http.HandlerFunc(s.handleUpdatePassword)))
	mux.Handle("POST /auth/role", requireAuth(http.HandlerFunc(s.handleSetRole)))
	if s.googleAuth != nil {
		mux.HandleFunc("GET /auth/google", s.googleAuth.Begin)
		mux.HandleFunc("GET /auth/google/callback", s.googleAuth.Callback)
	}

	// Job postings (company accounts)
	mux.Handle("POST /jobs", companyOnly(s.handleCreateJob))
	mux.Handle("GET /jobs", companyOnly(s.handleListJobs))
	mux.Handle("GET /jobs/{id}", companyOnly(s.handleGetJob))
	mux.Handle("PUT /jobs/{id}", companyOnly(s.handleUpdateJob))
	mux.Handle("PATCH /jobs/{id}/status", companyOnly(s.handleUpdateJobStatus))

	// Applications (company accounts)
	mux.Handle("GET /jobs/{id}/applicants", companyOnly(s.handleListApplicants))
	mux.Handle("GET /jobs/{id}/applicants/counts", companyOnly(s.handleApplicantCounts))
	mux.Handle("GET /applicants/{id}", companyOnly(s.handleGetApplicant))
	mux.Handle("GET /applicants/{id}/evaluation", companyOnly(s.handleGetEvaluation))

	// Share links (company accounts)
	mux.Handle("POST /share-links", companyOnly(s.handleUpsertShareLink))
	mux.Handle("GET /share-links", companyOnly(s.handleListShareLinks))
	mux.Handle("DELETE /share-links/{company}/{job}", companyOnly(s.handleDeleteShareLink))

	// Role profiles
	mux.Handle("GET /profiles/company", requireAuth(http.HandlerFunc(s.handleGetCompanyProfile)))
	mux.Handle("PUT /profiles/company", requireAuth(http.HandlerFunc(s.handleUpsertCompanyProfile)))
	mux.Handle("GET /profiles/applicant", requireAuth(http.HandlerFunc(s.handleGetApplicantProfile)))
	mux.Handle("PUT /profiles/applicant", requireAuth(http.HandlerFunc(s.handleUpsertApplicantProfile)))

	// Public application flow
	mux.HandleFunc("GET /apply/{company}/{job}", s.handleResolveShareLink)
	mux.HandleFunc("POST /apply/{company}/{job}", s.handleSubmitApplication)

	// Administration
	mux.HandleFunc("POST /admin/migrate", s.handleMigrate)

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// handleHealth returns server health status. The database is the only hard
// dependency; cache and analyzer outages are reported but degrade instead
// of failing the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{"database": "ok"}
	status := "ok"

	if err := s.db.Ping(r.Context()); err != nil {
		components["database"] = "unreachable"
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
			"status":     "unavailable",
			"components": components,
		})
		return
	}

	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			components["cache"] = "unreachable"
			status = "degraded"
		} else {
			components["cache"] = "ok"
		}
	}
	if s.analyzer != nil {
		if err := s.analyzer.Health(r.Context()); err != nil {
			components["analyzer"] = "unreachable"
			status = "degraded"
		} else {
			components["analyzer"] = "ok"
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     status,
		"components": components,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.authHandler.MeWithUserID(w, r, userID)
}

// handleUpdatePassword handles password update requests.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}

// handleSetRole records the role chosen after a Google sign-in.
func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.authHandler.SetRoleWithUserID(w, r, userID)
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
