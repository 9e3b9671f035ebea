package http

import (
	"github.com/vkuzmin/shelfmate/internal/auth"
	"github.com/vkuzmin/shelfmate/internal/database"
	"github.com/vkuzmin/shelfmate/internal/database/authors"
	"github.com/vkuzmin/shelfmate/internal/database/books"
	"github.com/vkuzmin/shelfmate/internal/database/genres"
	"github.com/vkuzmin/shelfmate/internal/database/sessions"
	"github.com/vkuzmin/shelfmate/internal/database/stats"
	"github.com/vkuzmin/shelfmate/internal/metadata"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database     *database.Database
	Books        *books.Repository
	Authors      *authors.Repository
	Genres       *genres.Repository
	Sessions     *sessions.Repository
	Stats        *stats.Repository
	LookupClient *metadata.GoogleBooksClient

	// Authentication (nil when auth mode is "none")
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager

	// Rate limiting (nil when disabled)
	RateLimiter *RateLimiter

	// Projection settings
	GenrePopularThreshold int

	// Application info
	Version string
}
