// Package server wires the application together: database, services,
// handlers, middleware, and routes. It is the composition root; main.go only
// loads config and calls Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tahmid/habit-tracker/internal/auth"
	"github.com/tahmid/habit-tracker/internal/handler"
	"github.com/tahmid/habit-tracker/internal/middleware"
	sqliteRepo "github.com/tahmid/habit-tracker/internal/repository/sqlite"
	"github.com/tahmid/habit-tracker/internal/service"
)

// blacklistSweepInterval is how often revoked-token rows whose tokens have
// expired anyway are pruned.
const blacklistSweepInterval = time.Hour

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string

	// BcryptCost overrides the password hashing cost when non-zero. Tests
	// set it to the minimum so account creation stays fast.
	BcryptCost int
}

// Server owns the router, the database connection, and the wired-up
// application stack.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token/password/guest
// services, domain services, handlers, and routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	if s.config.BcryptCost != 0 {
		passwords = auth.NewPasswordServiceWithCost(s.config.BcryptCost)
	}
	guests := auth.NewGuestGenerator()

	authService := service.NewAuthService(s.db.Users(), s.db.Blacklist(), tokens, passwords, guests, s.logger)
	habitService := service.NewHabitService(s.db.Habits(), s.db.Streaks(), s.logger)
	taskService := service.NewTaskService(s.db.Tasks(), s.db.Habits(), s.db.Streaks(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	habitHandler := handler.NewHabitHandler(habitService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	requireAnonymous := auth.RequireAnonymous(tokens)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Session-establishing endpoints reject callers who already hold a
		// valid session.
		r.Group(func(r chi.Router) {
			r.Use(requireAnonymous)
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/guest", authHandler.HandleGuest)
		})

		// Token refresh authenticates by the refresh token in the body, not
		// the Authorization header.
		r.Post("/token/refresh", authHandler.HandleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)

			r.Get("/habits", habitHandler.HandleList)
			r.Post("/habits", habitHandler.HandleCreate)
			r.Get("/habits/{habitID}", habitHandler.HandleGet)
			r.Put("/habits/{habitID}", habitHandler.HandleUpdate)
			r.Delete("/habits/{habitID}", habitHandler.HandleDelete)
			r.Post("/habits/{habitID}/reactivate", habitHandler.HandleReactivate)
			r.Get("/habits/{habitID}/streak", habitHandler.HandleStreak)

			r.Get("/tasks", taskHandler.HandleList)
			r.Post("/tasks", taskHandler.HandleCreate)
			r.Get("/tasks/{taskID}", taskHandler.HandleGet)
			r.Post("/tasks/{taskID}/complete", taskHandler.HandleComplete)
		})
	})

	return nil
}

// Handler exposes the router. Tests drive the full stack through it with
// httptest instead of binding a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go s.sweepBlacklist(sweepCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// sweepBlacklist periodically removes revoked-token entries whose tokens
// have expired on their own. The blacklist only needs to outlive the tokens
// it names.
func (s *Server) sweepBlacklist(ctx context.Context) {
	ticker := time.NewTicker(blacklistSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.db.Blacklist().DeleteExpired(ctx, time.Now()); err != nil {
				s.logger.Error("blacklist sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
