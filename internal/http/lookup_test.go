package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuzmin/shelfmate/internal/config"
	"github.com/vkuzmin/shelfmate/internal/metadata"
)

func newLookupClient(baseURL string) *metadata.GoogleBooksClient {
	return metadata.NewGoogleBooksClient(config.GoogleBooks{
		BaseURL:           baseURL,
		Timeout:           2 * time.Second,
		MaxResults:        5,
		RequestsPerSecond: 1000,
	})
}

func TestLookupSearchEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"id": "vol-1",
				"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert"],
					"publishedDate": "1965",
					"pageCount": 412,
					"categories": ["Science Fiction"]
				}
			}]
		}`))
	}))
	defer upstream.Close()

	router, cleanup := setupTestRouter(t, newLookupClient(upstream.URL))
	defer cleanup()

	t.Run("returns drafts for a free-text query", func(t *testing.T) {
		var payload struct {
			Data  []metadata.BookDraft `json:"data"`
			Count int                  `json:"count"`
		}
		recorder := doJSON(t, router, http.MethodGet, "/api/lookup/search?q=dune", nil, &payload)
		require.Equal(t, http.StatusOK, recorder.Code)
		require.Equal(t, 1, payload.Count)
		assert.Equal(t, "Dune", payload.Data[0].Title)
		require.NotNil(t, payload.Data[0].TotalPages)
		assert.Equal(t, 412, *payload.Data[0].TotalPages)
	})

	t.Run("missing query is a validation error", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodGet, "/api/lookup/search", nil, nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestLookupSearchDegradesOnUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	router, cleanup := setupTestRouter(t, newLookupClient(upstream.URL))
	defer cleanup()

	var payload struct {
		Data  []metadata.BookDraft `json:"data"`
		Count int                  `json:"count"`
	}
	recorder := doJSON(t, router, http.MethodGet, "/api/lookup/search?q=dune", nil, &payload)
	// Searches degrade to empty rather than failing.
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Zero(t, payload.Count)
}

func TestLookupGetVolumeEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volumes/vol-1":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "vol-1", "volumeInfo": {"title": "Dune"}}`))
		case "/volumes/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer upstream.Close()

	router, cleanup := setupTestRouter(t, newLookupClient(upstream.URL))
	defer cleanup()

	t.Run("found", func(t *testing.T) {
		var draft metadata.BookDraft
		recorder := doJSON(t, router, http.MethodGet, "/api/lookup/volumes/vol-1", nil, &draft)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "Dune", draft.Title)
	})

	t.Run("missing volume is a 404", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodGet, "/api/lookup/volumes/missing", nil, nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("upstream failure propagates as EXTERNAL_SERVICE_UNAVAILABLE", func(t *testing.T) {
		var errResp ErrorResponse
		recorder := doJSON(t, router, http.MethodGet, "/api/lookup/volumes/boom", nil, &errResp)
		assert.Equal(t, http.StatusBadGateway, recorder.Code)
		assert.Equal(t, CodeExternalService, errResp.Code)
	})
}
