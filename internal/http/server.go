// Package http serves the JSON API over the ledger engine.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"monetra/internal/ledger"
	"monetra/internal/log"
	"monetra/internal/middleware/ratelimit"
	"monetra/internal/middleware/trace"
)

type Server struct {
	http.Server
	ledger      *ledger.Ledger
	logger      *log.Logger
	recentLimit int

	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// recentLimit caps the dashboard's recent-transactions list.
func NewServer(addr string, l *ledger.Ledger, logger *log.Logger, recentLimit int) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:      l,
		logger:      logger,
		recentLimit: recentLimit,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:      trace.NewMiddleware(extractClientIP),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("/api/sections/", s.withMiddleware(s.handleSections))
	mux.HandleFunc("/api/add", s.withMiddleware(s.handleAddMoney))
	mux.HandleFunc("/api/spend", s.withMiddleware(s.handleSpendMoney))
	mux.HandleFunc("/api/transfer", s.withMiddleware(s.handleTransferMoney))
	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/api/report", s.withMiddleware(s.handleReport))
	mux.HandleFunc("/api/reset", s.withMiddleware(s.handleReset))

	return s
}

// withMiddleware chains tracing, security headers and POST rate limiting
// around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applySecurityHeaders(w)
		next(w, r)
	})

	rateLimited := s.rateLimiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})(base)

	// Rate limiting applies to mutations only.
	dispatch := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			rateLimited.ServeHTTP(w, r)
		default:
			base.ServeHTTP(w, r)
		}
	})

	return s.tracer.Middleware(dispatch).ServeHTTP
}

func applySecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Cache-Control", "no-store")
}

// extractClientIP resolves the client address, preferring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.ledger == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter cleanup goroutine and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
