package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"gagyebu/internal/cache"
	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

// Service ports the handlers depend on. The services package implements them.
type (
	EntryAPI interface {
		Create(ctx context.Context, req services.EntryRequest) (core.Entry, error)
		Update(ctx context.Context, id int64, req services.EntryRequest) (core.Entry, error)
		Confirm(ctx context.Context, id int64) (core.Entry, error)
		Delete(ctx context.Context, id int64) error
		Get(ctx context.Context, id int64) (core.Entry, error)
		List(ctx context.Context, from, to core.Date) ([]core.Entry, error)
		ListPlanned(ctx context.Context) ([]core.Entry, error)
		ListByCard(ctx context.Context, cardID int64, from, to core.Date) ([]core.Entry, error)
		ListByPaymentMethod(ctx context.Context, pm core.PaymentMethod, from, to core.Date) ([]core.Entry, error)
	}

	RecurringAPI interface {
		Create(ctx context.Context, req services.TemplateRequest) (core.RecurringTemplate, error)
		Update(ctx context.Context, id int64, req services.TemplateRequest) (core.RecurringTemplate, error)
		Delete(ctx context.Context, id int64) error
		Get(ctx context.Context, id int64) (core.RecurringTemplate, error)
		List(ctx context.Context) ([]core.RecurringTemplate, error)
		ApplyOne(ctx context.Context, id int64) (core.ApplySummary, error)
		ApplyAll(ctx context.Context) (core.ApplySummary, error)
	}

	AssetAPI interface {
		Create(ctx context.Context, req services.AssetRequest) (core.Asset, error)
		Update(ctx context.Context, id int64, req services.AssetRequest) (core.Asset, error)
		Get(ctx context.Context, id int64) (core.Asset, error)
		List(ctx context.Context) ([]core.Asset, error)
		SetDefault(ctx context.Context, id int64) (core.Asset, error)
		Delete(ctx context.Context, id int64) error
		NetWorth(ctx context.Context) (core.NetWorth, error)
	}

	CatalogAPI interface {
		CreateCategory(ctx context.Context, name string, t core.CategoryType) (core.Category, error)
		UpdateCategory(ctx context.Context, id int64, name string, t core.CategoryType) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		DeleteCategory(ctx context.Context, id int64) error
		CreateCard(ctx context.Context, name string, t core.CardType) (core.Card, error)
		ListCards(ctx context.Context) ([]core.Card, error)
		DeleteCard(ctx context.Context, id int64) error
	}

	TaxAPI interface {
		StockTax(ctx context.Context, req services.StockTaxRequest) (core.StockTax, error)
		YearEnd(ctx context.Context, req services.YearEndRequest) (services.YearEndReport, error)
		CardSpending(ctx context.Context, year int) (services.CardSpending, error)
	}

	BudgetAPI interface {
		Set(ctx context.Context, req services.BudgetRequest) (core.Budget, error)
		Delete(ctx context.Context, id int64) error
		Month(ctx context.Context, year, month int) ([]services.BudgetStatus, error)
		Period(ctx context.Context, from, to core.Date) ([]services.BudgetStatus, error)
	}
)

// Deps are the services mounted by NewServer.
type Deps struct {
	Entries   EntryAPI
	Recurring RecurringAPI
	Assets    AssetAPI
	Catalog   CatalogAPI
	Tax       TaxAPI
	Budgets   BudgetAPI
	// Ready reports whether the backing store can serve requests. Nil means always ready.
	Ready func(ctx context.Context) error
	// RateLimit caps mutating requests per client per minute. Zero means 60.
	RateLimit int
	// Logger is stored in every request context. Nil derives one from slog.Default.
	Logger *applog.Logger
}

const netWorthKey = "net-worth"

type Server struct {
	http.Server
	deps        Deps
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Net worth is recomputed from every asset; cached until the next mutation.
	netWorth     *cache.LRUCache[core.NetWorth]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP, Handler: slog.Default().Handler()})
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           applog.Middleware(logger)(mux),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		deps:         deps,
		rateLimiter:  newRateLimiter(deps.RateLimit),
		metrics:      &securityMetrics{},
		netWorth:     cache.NewLRUCache[core.NetWorth](1, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.netWorth)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.withMiddleware(h))
	}

	route("POST /api/transactions", s.handleCreateEntry)
	route("GET /api/transactions", s.handleListEntries)
	route("GET /api/transactions/planned", s.handlePlannedEntries)
	route("GET /api/transactions/{id}", s.handleGetEntry)
	route("PUT /api/transactions/{id}", s.handleUpdateEntry)
	route("DELETE /api/transactions/{id}", s.handleDeleteEntry)
	route("PATCH /api/transactions/{id}/confirm", s.handleConfirmEntry)

	route("POST /api/recurring", s.handleCreateTemplate)
	route("GET /api/recurring", s.handleListTemplates)
	route("POST /api/recurring/apply", s.handleApplyAll)
	route("GET /api/recurring/{id}", s.handleGetTemplate)
	route("PUT /api/recurring/{id}", s.handleUpdateTemplate)
	route("DELETE /api/recurring/{id}", s.handleDeleteTemplate)
	route("POST /api/recurring/{id}/apply", s.handleApplyOne)

	route("POST /api/assets", s.handleCreateAsset)
	route("GET /api/assets", s.handleListAssets)
	route("GET /api/assets/net-worth", s.handleNetWorth)
	route("GET /api/assets/{id}", s.handleGetAsset)
	route("PUT /api/assets/{id}", s.handleUpdateAsset)
	route("DELETE /api/assets/{id}", s.handleDeleteAsset)
	route("PATCH /api/assets/{id}/default", s.handleSetDefaultAsset)

	route("POST /api/categories", s.handleCreateCategory)
	route("GET /api/categories", s.handleListCategories)
	route("PUT /api/categories/{id}", s.handleUpdateCategory)
	route("DELETE /api/categories/{id}", s.handleDeleteCategory)

	route("POST /api/cards", s.handleCreateCard)
	route("GET /api/cards", s.handleListCards)
	route("DELETE /api/cards/{id}", s.handleDeleteCard)
	route("GET /api/cards/{id}/transactions", s.handleCardEntries)

	route("POST /api/tax/stock", s.handleStockTax)
	route("POST /api/tax/year-end", s.handleYearEnd)
	route("GET /api/tax/card-spending", s.handleCardSpending)

	route("POST /api/budgets", s.handleSetBudget)
	route("GET /api/budgets", s.handleListBudgets)
	route("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

const requestIDHeader = "X-Request-ID"

// requestID reuses a well-formed incoming id, otherwise mints a new one.
func requestID(r *http.Request) string {
	if v := r.Header.Get(requestIDHeader); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// withMiddleware adds request IDs, security headers, rate limiting, request
// logging and cache invalidation after successful writes.
func (s *Server) withMiddleware(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		reqID := requestID(r)

		logger := applog.FromContext(r.Context()).With(applog.FieldRequestID, reqID)
		ctx := applog.NewContext(r.Context(), logger)
		r = r.WithContext(ctx)

		w.Header().Set(requestIDHeader, reqID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded", Code: "RATE_LIMITED"})
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		if isMutating(r.Method) && rw.statusCode < 400 {
			s.netWorth.Purge()
		}

		logger.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SecurityStats returns the rate limit and suspicious request counters.
func (s *Server) SecurityStats() SecurityStats {
	return s.metrics.snapshot()
}
