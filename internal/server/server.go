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

	"github.com/Silexemple/satoshi-casino21/internal/auth"
	"github.com/Silexemple/satoshi-casino21/internal/config"
	"github.com/Silexemple/satoshi-casino21/internal/database"
	"github.com/Silexemple/satoshi-casino21/internal/handlers"
	"github.com/Silexemple/satoshi-casino21/internal/ledger"
	custommiddleware "github.com/Silexemple/satoshi-casino21/internal/middleware"
	"github.com/Silexemple/satoshi-casino21/internal/realtime"
	"github.com/Silexemple/satoshi-casino21/internal/services"
	"github.com/Silexemple/satoshi-casino21/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
)

type CasinoServer struct {
	config          *config.Config
	db              *database.DB
	redisClient     *redis.Client
	jwtManager      *auth.JWTManager
	authMiddleware  *auth.AuthMiddleware
	authService     *services.AuthService
	tableService    *services.TableService
	playerLedger    *ledger.GormLedger
	apiRateLimiter  *custommiddleware.RateLimiter
	authRateLimiter *custommiddleware.RateLimiter
	server          *http.Server
	hub             *realtime.Hub
}

func NewCasinoServer() (*CasinoServer, error) {
	// Load configuration
	cfg := config.Load()

	// Setup database
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := db.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Setup Redis, the shared table store
	redisClient, err := store.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Setup JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, "satoshi-casino")
	authMiddleware := auth.NewAuthMiddleware(jwtManager)

	// Setup services
	playerLedger := ledger.NewGormLedger(db)
	authService := services.NewAuthService(db, jwtManager, cfg.WelcomeCredit)
	tableService := services.NewTableService(
		store.NewTableStore(redisClient),
		store.NewTableLock(redisClient),
		store.NewRoundMarkers(redisClient),
		store.NewHouseBankroll(redisClient),
		playerLedger,
	)

	// Setup rate limiters
	apiRateLimiter := custommiddleware.NewAPIRateLimiter()
	authRateLimiter := custommiddleware.NewAuthRateLimiter()

	// Setup the live update hub
	hub := realtime.NewHub(jwtManager)
	tableService.SetNotifier(hub)

	return &CasinoServer{
		config:          cfg,
		db:              db,
		redisClient:     redisClient,
		jwtManager:      jwtManager,
		authMiddleware:  authMiddleware,
		authService:     authService,
		tableService:    tableService,
		playerLedger:    playerLedger,
		apiRateLimiter:  apiRateLimiter,
		authRateLimiter: authRateLimiter,
		hub:             hub,
	}, nil
}

func (s *CasinoServer) Start() error {
	// Setup router
	router := s.setupRouter()

	// Create HTTP server
	s.server = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting casino server", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	return s.Shutdown()
}

func (s *CasinoServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Close database connection
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}

	// Close Redis connection
	if err := s.redisClient.Close(); err != nil {
		slog.Error("Failed to close Redis connection", "error", err)
	}

	// Close rate limiters
	s.apiRateLimiter.Close()
	s.authRateLimiter.Close()

	slog.Info("Server shutdown complete")
	return nil
}

func (s *CasinoServer) setupRouter() chi.Router {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auth.SecurityHeaders)
	r.Use(s.apiRateLimiter.RateLimit)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// WebSocket endpoint for live table updates
	r.Get("/ws", s.hub.ServeWS)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		authHandler := handlers.NewAuthHandler(s.authService)

		// Public auth routes with stricter rate limiting
		r.Group(func(r chi.Router) {
			r.Use(s.authRateLimiter.RateLimit)
			r.Mount("/auth", authHandler.Routes())
		})

		// Protected routes group
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.RequireAuth)

			r.Mount("/user", authHandler.ProtectedRoutes())

			balanceHandler := handlers.NewBalanceHandler(s.playerLedger)
			r.Mount("/balance", balanceHandler.Routes())

			tableHandler := handlers.NewTableHandler(s.tableService)
			r.Mount("/tables", tableHandler.Routes())
		})
	})

	return r
}
