package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/auth"
	"github.com/vkuzmin/shelfmate/internal/config"
	"github.com/vkuzmin/shelfmate/internal/database"
	"github.com/vkuzmin/shelfmate/internal/database/authors"
	"github.com/vkuzmin/shelfmate/internal/database/books"
	"github.com/vkuzmin/shelfmate/internal/database/genres"
	"github.com/vkuzmin/shelfmate/internal/database/sessions"
	"github.com/vkuzmin/shelfmate/internal/database/stats"
	"github.com/vkuzmin/shelfmate/internal/database/users"
	http_controllers "github.com/vkuzmin/shelfmate/internal/http"
	"github.com/vkuzmin/shelfmate/internal/metadata"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Shelfmate v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	authorRepo := authors.NewRepository(db.DB)
	genreRepo := genres.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	statsRepo := stats.NewRepository(db.DB)

	// Create the Google Books lookup client
	lookupClient := metadata.NewGoogleBooksClient(cfg.GoogleBooks)
	if cfg.GoogleBooks.APIKey == "" {
		log.Printf("WARNING: Google Books API key is not set. Anonymous quota applies. Set 'GOOGLE_BOOKS_API_KEY' to raise it.")
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		userRepo := users.NewRepository(db.DB)
		authService = auth.NewService(userRepo, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}
		authMiddleware = auth.NewMiddleware(authService, sessionManager)
	} else {
		log.Printf("Authentication mode: none (single-user)")
	}

	var rateLimiter *http_controllers.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = http_controllers.NewRateLimiter(cfg.RateLimit)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:              db,
		Books:                 bookRepo,
		Authors:               authorRepo,
		Genres:                genreRepo,
		Sessions:              sessionRepo,
		Stats:                 statsRepo,
		LookupClient:          lookupClient,
		AuthService:           authService,
		AuthMiddleware:        authMiddleware,
		SessionManager:        sessionManager,
		RateLimiter:           rateLimiter,
		GenrePopularThreshold: cfg.Genres.PopularThreshold,
		Version:               version,
	})

	Serve(router, cfg, nil)
}
