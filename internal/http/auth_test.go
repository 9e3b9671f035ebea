package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vkuzmin/shelfmate/internal/auth"
	"github.com/vkuzmin/shelfmate/internal/config"
	"github.com/vkuzmin/shelfmate/internal/database"
	"github.com/vkuzmin/shelfmate/internal/database/authors"
	"github.com/vkuzmin/shelfmate/internal/database/books"
	"github.com/vkuzmin/shelfmate/internal/database/genres"
	"github.com/vkuzmin/shelfmate/internal/database/sessions"
	"github.com/vkuzmin/shelfmate/internal/database/stats"
	"github.com/vkuzmin/shelfmate/internal/database/users"
)

// setupAuthRouter builds a router with local authentication enabled.
func setupAuthRouter(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_" + t.Name() + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	authCfg := config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
	service := auth.NewService(users.NewRepository(db.DB), authCfg)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sessionManager, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Database:              db,
		Books:                 books.NewRepository(db.DB),
		Authors:               authors.NewRepository(db.DB),
		Genres:                genres.NewRepository(db.DB),
		Sessions:              sessions.NewRepository(db.DB),
		Stats:                 stats.NewRepository(db.DB),
		AuthService:           service,
		AuthMiddleware:        auth.NewMiddleware(service, sessionManager),
		SessionManager:        sessionManager,
		GenrePopularThreshold: 2,
		Version:               "test",
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, cleanup
}

func doAuthed(t *testing.T, router *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestLocalAuthFlow(t *testing.T) {
	router, cleanup := setupAuthRouter(t)
	defer cleanup()

	credentials := map[string]string{"username": "reader", "password": "a valid password"}

	t.Run("API is closed without a session", func(t *testing.T) {
		recorder := doAuthed(t, router, http.MethodGet, "/api/books", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("health stays public", func(t *testing.T) {
		recorder := doAuthed(t, router, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("first-run registration", func(t *testing.T) {
		recorder := doAuthed(t, router, http.MethodPost, "/auth/register", credentials, nil)
		require.Equal(t, http.StatusCreated, recorder.Code, "unexpected body: %s", recorder.Body.String())

		// Registration closes after the first user.
		recorder = doAuthed(t, router, http.MethodPost, "/auth/register",
			map[string]string{"username": "second", "password": "a valid password"}, nil)
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("bad credentials are rejected", func(t *testing.T) {
		recorder := doAuthed(t, router, http.MethodPost, "/auth/login",
			map[string]string{"username": "reader", "password": "wrong password!"}, nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	var sessionCookies []*http.Cookie
	t.Run("login issues a session cookie", func(t *testing.T) {
		recorder := doAuthed(t, router, http.MethodPost, "/auth/login", credentials, nil)
		require.Equal(t, http.StatusOK, recorder.Code, "unexpected body: %s", recorder.Body.String())
		sessionCookies = recorder.Result().Cookies()
		require.NotEmpty(t, sessionCookies)
	})

	t.Run("session opens the API", func(t *testing.T) {
		recorder := doAuthed(t, router, http.MethodGet, "/api/books", nil, sessionCookies)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		recorder := doAuthed(t, router, http.MethodPost, "/auth/logout", nil, sessionCookies)
		require.Equal(t, http.StatusOK, recorder.Code)

		recorder = doAuthed(t, router, http.MethodGet, "/api/books", nil, sessionCookies)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
