// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"

	"github.com/go-chi/chi/v5"
)

// UserStore resolves and registers accounts.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	GetUserByID(ctx context.Context, id int64) (storage.User, error)
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	ledger     *services.Ledger
	users      UserStore
	tokens     *auth.Service
	logger     *log.Logger
	limiter    *ratelimit.Limiter
}

func NewServer(addr string, ledger *services.Ledger, users UserStore, tokens *auth.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}

	s := &Server{
		router:  chi.NewRouter(),
		ledger:  ledger,
		users:   users,
		tokens:  tokens,
		logger:  logger,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
	return s
}

func (s *Server) routes() {
	tracer := trace.NewMiddleware(clientIP)
	s.router.Use(tracer.Middleware)
	s.router.Use(s.limiter.Middleware(clientIP, nil))

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Get("/transactions/summary", s.handleSummary)
			r.Get("/transactions/trends", s.handleTrends)
			r.Put("/transactions/{id}", s.handleUpdateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)

			r.Get("/categories", s.handleCategories)
		})
	})
}

// Handler returns the routed handler, used directly by httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientIP extracts the caller address, trusting X-Forwarded-For when a
// proxy sets it.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
