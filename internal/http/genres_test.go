package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenresEndpoint(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil) // popular threshold is 2
	defer cleanup()

	t.Run("create normalizes the name", func(t *testing.T) {
		var created GenreResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/genres",
			map[string]any{"name": "sci-fi"}, &created)
		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "Science Fiction", created.Name)
	})

	t.Run("variant spelling returns the existing genre", func(t *testing.T) {
		var first GenreResponse
		doJSON(t, router, http.MethodPost, "/api/genres", map[string]any{"name": "YA"}, &first)

		var second GenreResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/genres",
			map[string]any{"name": "young adult"}, &second)
		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("popular flag follows the book count threshold", func(t *testing.T) {
		createTestBook(t, router, map[string]any{"title": "F1", "genres": []string{"fantasy"}})
		createTestBook(t, router, map[string]any{"title": "F2", "genres": []string{"fantasy"}})
		createTestBook(t, router, map[string]any{"title": "H1", "genres": []string{"horror"}})

		var payload struct {
			Data []GenreResponse `json:"data"`
		}
		recorder := doJSON(t, router, http.MethodGet, "/api/genres", nil, &payload)
		require.Equal(t, http.StatusOK, recorder.Code)

		byName := map[string]GenreResponse{}
		for _, genre := range payload.Data {
			byName[genre.Name] = genre
		}
		require.Contains(t, byName, "Fantasy")
		require.Contains(t, byName, "Horror")
		require.NotNil(t, byName["Fantasy"].Popular)
		assert.True(t, *byName["Fantasy"].Popular)
		require.NotNil(t, byName["Horror"].Popular)
		assert.False(t, *byName["Horror"].Popular)
	})

	t.Run("unknown genre yields GENRE_NOT_FOUND", func(t *testing.T) {
		var errResp ErrorResponse
		recorder := doJSON(t, router, http.MethodGet, "/api/genres/99999", nil, &errResp)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, CodeGenreNotFound, errResp.Code)
	})

	t.Run("books by genre", func(t *testing.T) {
		var created GenreResponse
		doJSON(t, router, http.MethodPost, "/api/genres", map[string]any{"name": "westerns"}, &created)
		createTestBook(t, router, map[string]any{"title": "Lonesome Dove", "genres": []string{"westerns"}})

		var payload struct {
			Data  []BookSummary `json:"data"`
			Count int           `json:"count"`
		}
		recorder := doJSON(t, router, http.MethodGet, "/api/genres/"+itoa(created.ID)+"/books", nil, &payload)
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, 1, payload.Count)
		assert.Equal(t, "Lonesome Dove", payload.Data[0].Title)
	})
}

func TestAuthorsEndpoint(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	t.Run("create computes the full name", func(t *testing.T) {
		var created AuthorResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/authors",
			map[string]any{"first_name": "Octavia", "last_name": "Butler"}, &created)
		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "Octavia Butler", created.FullName)
	})

	t.Run("duplicate name pair is a conflict", func(t *testing.T) {
		var errResp ErrorResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/authors",
			map[string]any{"first_name": "Octavia", "last_name": "Butler"}, &errResp)
		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Equal(t, CodeConflict, errResp.Code)
	})

	t.Run("future birth date is a validation error", func(t *testing.T) {
		var errResp ErrorResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/authors",
			map[string]any{"first_name": "Time", "last_name": "Traveler", "birth_date": "2200-01-01T00:00:00Z"}, &errResp)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, CodeValidationError, errResp.Code)
	})

	t.Run("unknown author yields AUTHOR_NOT_FOUND", func(t *testing.T) {
		var errResp ErrorResponse
		recorder := doJSON(t, router, http.MethodGet, "/api/authors/99999", nil, &errResp)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, CodeAuthorNotFound, errResp.Code)
	})

	t.Run("books by author", func(t *testing.T) {
		created := createTestBook(t, router, map[string]any{
			"title":   "Kindred",
			"authors": []map[string]string{{"first_name": "Octavia", "last_name": "Butler"}},
		})
		require.Len(t, created.Authors, 1)

		var payload struct {
			Data  []BookSummary `json:"data"`
			Count int           `json:"count"`
		}
		recorder := doJSON(t, router, http.MethodGet, "/api/authors/"+itoa(created.Authors[0].ID)+"/books", nil, &payload)
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, 1, payload.Count)
		assert.Equal(t, []string{"Octavia Butler"}, payload.Data[0].AuthorNames)
	})
}

func TestSessionsEndpoint(t *testing.T) {
	router, cleanup := setupTestRouter(t, nil)
	defer cleanup()

	book := createTestBook(t, router, map[string]any{"title": "Tracked", "total_pages": 100})

	t.Run("manual session logging", func(t *testing.T) {
		var created SessionResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/sessions",
			map[string]any{"book_id": book.ID, "pages_read": 15, "mood": "relaxed"}, &created)
		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, book.ID, created.BookID)
		assert.Equal(t, 15, created.PagesRead)
	})

	t.Run("session for a missing book yields BOOK_NOT_FOUND", func(t *testing.T) {
		var errResp ErrorResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/sessions",
			map[string]any{"book_id": 99999, "pages_read": 5}, &errResp)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, CodeBookNotFound, errResp.Code)
	})

	t.Run("negative pages is a validation error", func(t *testing.T) {
		var errResp ErrorResponse
		recorder := doJSON(t, router, http.MethodPost, "/api/sessions",
			map[string]any{"book_id": book.ID, "pages_read": -3}, &errResp)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, CodeValidationError, errResp.Code)
	})

	t.Run("sessions listed under the book", func(t *testing.T) {
		var payload struct {
			Data  []SessionResponse `json:"data"`
			Count int               `json:"count"`
		}
		recorder := doJSON(t, router, http.MethodGet, "/api/books/"+itoa(book.ID)+"/sessions", nil, &payload)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 1, payload.Count)
	})
}
