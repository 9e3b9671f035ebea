package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	// Panics become a generic internal error; details stay in the server log.
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  CodeInternalError,
			Path:  c.Request.URL.Path,
		})
	}))

	// Apply rate limiting if enabled
	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Handler())
	}

	// Apply session middleware if enabled
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	booksController := NewBooksController(cfg.Books, cfg.Authors, cfg.Genres)
	authorsController := NewAuthorsController(cfg.Authors, cfg.Books)
	genresController := NewGenresController(cfg.Genres, cfg.Books, cfg.GenrePopularThreshold)
	sessionsController := NewSessionsController(cfg.Sessions)
	statsController := NewStatsController(cfg.Stats)
	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints (local mode only)
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := NewAuthController(cfg.AuthService, cfg.SessionManager)
		router.POST("/auth/register", authController.Register)
		router.POST("/auth/login", authController.Login)
		router.POST("/auth/logout", authController.Logout)
	}

	// Book endpoints
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)
	router.PATCH("/api/books/:id/progress", booksController.UpdateProgress)
	router.PATCH("/api/books/:id/status", booksController.ChangeStatus)
	router.GET("/api/books/:id/sessions", sessionsController.GetBookSessions)

	// Author endpoints
	router.POST("/api/authors", authorsController.CreateAuthor)
	router.GET("/api/authors", authorsController.ListAuthors)
	router.GET("/api/authors/:id", authorsController.GetAuthor)
	router.PUT("/api/authors/:id", authorsController.UpdateAuthor)
	router.DELETE("/api/authors/:id", authorsController.DeleteAuthor)
	router.GET("/api/authors/:id/books", authorsController.GetAuthorBooks)

	// Genre endpoints
	router.POST("/api/genres", genresController.CreateGenre)
	router.GET("/api/genres", genresController.ListGenres)
	router.GET("/api/genres/:id", genresController.GetGenre)
	router.DELETE("/api/genres/:id", genresController.DeleteGenre)
	router.GET("/api/genres/:id/books", genresController.GetGenreBooks)

	// Reading session endpoints
	router.POST("/api/sessions", sessionsController.CreateSession)
	router.GET("/api/sessions/:id", sessionsController.GetSession)
	router.PATCH("/api/sessions/:id", sessionsController.UpdateSession)
	router.DELETE("/api/sessions/:id", sessionsController.DeleteSession)

	// Analytics endpoints
	router.GET("/api/stats/dashboard", statsController.Dashboard)
	router.GET("/api/stats/books-per-year", statsController.BooksPerYear)
	router.GET("/api/stats/genres", statsController.GenrePopularity)
	router.GET("/api/stats/moods", statsController.MoodStatistics)

	// External metadata lookup endpoints
	if cfg.LookupClient != nil {
		lookupController := NewLookupController(cfg.LookupClient)
		router.GET("/api/lookup/search", lookupController.Search)
		router.GET("/api/lookup/volumes/:id", lookupController.GetVolume)
	}

	return router
}
