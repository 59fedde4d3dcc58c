// Package http is the local JSON gateway. Reads are served from the
// in-memory stores; mutations go to the backend first and fall back to
// the offline outbox when the backend cannot be reached.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/export"
	applog "carteira/internal/log"
	"carteira/internal/storage"
	"carteira/internal/store"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Backend is the slice of the API client the gateway mutates through.
type Backend interface {
	CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error)
	SetSubscriptionActive(ctx context.Context, id int64, active bool) error
	DeleteSubscription(ctx context.Context, id int64) error
	CreateDebtor(ctx context.Context, d core.Debtor) (core.Debtor, error)
	DeleteDebtor(ctx context.Context, id int64) error
	CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
	MarkInstallmentPaid(ctx context.Context, debtID int64, number int, paidDate core.Date) error
	CreatePayment(ctx context.Context, debtID int64, amount decimal.Decimal, paidDate core.Date) error
}

// Outbox queues mutations that could not reach the backend.
type Outbox interface {
	Enqueue(ctx context.Context, entry storage.OutboxEntry) error
}

// Publisher notifies the sync worker that the outbox grew.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

type Server struct {
	http.Server

	stores    *store.Stores
	backend   Backend
	refresher store.Backend
	outbox    Outbox
	publisher Publisher
	reports   export.ReportWriter

	// Rendered responses keyed by store generation; a mutation bumps
	// the generation and the next read recomputes.
	summaryCache  *cache.Cache[summaryView]
	overviewCache *cache.Cache[overviewView]

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Deps carries everything beyond the stores and backend. Outbox,
// publisher and reports are optional; without an outbox the gateway is
// online-only.
type Deps struct {
	Refresher store.Backend
	Outbox    Outbox
	Publisher Publisher
	Reports   export.ReportWriter
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, stores *store.Stores, backend Backend, deps Deps) *Server {
	s := &Server{
		stores:      stores,
		backend:     backend,
		refresher:   deps.Refresher,
		outbox:      deps.Outbox,
		publisher:   deps.Publisher,
		reports:     deps.Reports,
		rateLimiter: newRateLimiter(),

		summaryCache:  cache.New[summaryView](16, 5*time.Minute),
		overviewCache: cache.New[overviewView](100, 5*time.Minute),
	}

	r := mux.NewRouter()
	r.Use(s.withObservability)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/subscriptions", s.handleListSubscriptions).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions", s.handleCreateSubscription).Methods(http.MethodPost)
	r.HandleFunc("/subscriptions/summary", s.handleSubscriptionSummary).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/{id:[0-9]+}/active", s.handleSetSubscriptionActive).Methods(http.MethodPatch)
	r.HandleFunc("/subscriptions/{id:[0-9]+}", s.handleDeleteSubscription).Methods(http.MethodDelete)

	r.HandleFunc("/debtors", s.handleListDebtors).Methods(http.MethodGet)
	r.HandleFunc("/debtors", s.handleCreateDebtor).Methods(http.MethodPost)
	r.HandleFunc("/debtors/{id:[0-9]+}", s.handleDeleteDebtor).Methods(http.MethodDelete)

	r.HandleFunc("/debts", s.handleListDebts).Methods(http.MethodGet)
	r.HandleFunc("/debts", s.handleCreateDebt).Methods(http.MethodPost)
	r.HandleFunc("/debts/{id:[0-9]+}/installments", s.handleListInstallments).Methods(http.MethodGet)
	r.HandleFunc("/debts/{id:[0-9]+}/installments/{number:[0-9]+}/pay", s.handlePayInstallment).Methods(http.MethodPost)
	r.HandleFunc("/debts/{id:[0-9]+}/payments", s.handleCreatePayment).Methods(http.MethodPost)
	r.HandleFunc("/installments/preview", s.handlePreviewInstallments).Methods(http.MethodPost)

	r.HandleFunc("/dashboard/overview", s.handleDashboardOverview).Methods(http.MethodGet)
	r.HandleFunc("/reports/export", s.handleExportReport).Methods(http.MethodPost)
	r.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the HTTP server and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withObservability adds a request id, request logging, security headers
// and rate limiting on mutations.
func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)
		logger := applog.FromContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// handleReady reports ready once the subscription store has been seeded,
// either from a snapshot or from the first refresh.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.stores.Subscriptions.Generation() == 0 {
		writeError(w, http.StatusServiceUnavailable, "stores not seeded yet")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ready")
}
