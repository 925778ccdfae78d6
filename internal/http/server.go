package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/idempotency"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/cors"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
)

// ExpenseService is what the handlers need from the service layer.
type ExpenseService interface {
	ListExpenses(ctx context.Context, q core.ListQuery) ([]core.Expense, error)
	CreateExpense(ctx context.Context, n core.NewExpense) (core.Expense, idempotency.Outcome, error)
	DeleteExpense(ctx context.Context, id string) error
	Summary(ctx context.Context, q core.ListQuery) (core.Summary, error)
	Categories(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Options configures the HTTP surface.
type Options struct {
	Addr               string
	CORSOrigin         string
	RateLimitPerMinute int
	MaxBodyBytes       int64
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	expenses     ExpenseService
	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	maxBodyBytes int64
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, expenses ExpenseService) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	s := &Server{
		expenses:     expenses,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     security.NewDetector(),
		maxBodyBytes: opts.MaxBodyBytes,
		startedAt:    time.Now(),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses/summary", s.handleSummary)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /categories", s.handleCategories)

	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly,
		func(w http.ResponseWriter, r *http.Request) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldComponent, applog.ComponentRateLimit,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			TooManyRequestsError().Write(w)
		})

	// Outermost first: tracing sees every request, including preflights
	// and rate-limited ones.
	var handler http.Handler = mux
	handler = limit(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = cors.Middleware(opts.CORSOrigin)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
