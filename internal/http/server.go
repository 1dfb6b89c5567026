package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/session"
)

// Ledger is the transaction side of the API. *services.LedgerService implements it.
type Ledger interface {
	Append(ctx context.Context, t core.Transaction) (core.Transaction, error)
	ListFor(ctx context.Context, username string) ([]core.Transaction, error)
	TotalFor(ctx context.Context, username string) (core.Money, error)
	GroupByCategory(ctx context.Context, username string) (map[core.Category]core.Money, error)
	Dashboard(ctx context.Context, id core.Identity) (core.Dashboard, error)
	ExportCSV(ctx context.Context, username string, w io.Writer) error
}

// Profiles reads and edits onboarding profiles. *services.ProfileService implements it.
type Profiles interface {
	Get(ctx context.Context, username string) (core.Profile, error)
	UpdateLimits(ctx context.Context, username string, u core.LimitsUpdate) (core.Profile, error)
}

// Pinger reports storage health for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the API needs.
type Deps struct {
	Router   *session.Router
	Sessions *session.Store
	Ledger   Ledger
	Profiles Profiles
	Storage  Pinger
	Logger   *applog.Logger
}

// Options tune the transport.
type Options struct {
	CookieName         string
	SecureCookies      bool
	RateLimitPerMinute int
}

// Server is the JSON API over the session router and ledger.
type Server struct {
	http.Server

	deps       Deps
	opts       Options
	logger     *applog.Logger
	limiter    *ratelimit.Limiter
	detector   *security.Detector
	tracer     *trace.Middleware
	startedAt  time.Time
	shutdownMu sync.Once
}

// NewServer wires middleware and routes, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "expense_session"
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		deps:      deps,
		opts:      opts,
		logger:    logger,
		detector:  detector,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:    trace.NewMiddleware(logger, detector.ExtractClientIP),
		startedAt: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(detector.Middleware(logger))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(api chi.Router) {
		api.Use(s.limiter.Middleware(detector.ExtractClientIP, s.onRateLimited))

		api.Get("/categories", s.handleCategories)
		api.Get("/session", s.withSession(s.handleSession))

		api.Post("/auth/register", s.withSession(s.handleRegister))
		api.Post("/auth/login", s.withSession(s.handleLogin))
		api.Post("/auth/logout", s.withSession(s.handleLogout))

		api.Post("/onboarding", s.withSession(s.handleOnboarding))

		api.Group(func(dash chi.Router) {
			dash.Get("/dashboard", s.onScreen(session.ScreenDashboard, s.handleDashboard))
			dash.Post("/profile/limits", s.onScreen(session.ScreenDashboard, s.handleUpdateLimits))
			dash.Post("/transactions", s.onScreen(session.ScreenDashboard, s.handleCreateTransaction))
			dash.Get("/transactions", s.onScreen(session.ScreenDashboard, s.handleListTransactions))
			dash.Get("/transactions/breakdown", s.onScreen(session.ScreenDashboard, s.handleBreakdown))
			dash.Get("/transactions/export", s.onScreen(session.ScreenDashboard, s.handleExport))
		})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownMu.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
