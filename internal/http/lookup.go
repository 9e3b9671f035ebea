package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/metadata"
)

// LookupController fronts the Google Books collaborator. Searches degrade
// to an empty result set when the upstream fails; direct volume fetches
// surface the failure instead.
type LookupController struct {
	client *metadata.GoogleBooksClient
}

func NewLookupController(client *metadata.GoogleBooksClient) *LookupController {
	return &LookupController{client: client}
}

// Search looks up candidate books by free-text query or ISBN and returns
// drafts suitable for submission through the normal creation path.
func (controller *LookupController) Search(c *gin.Context) {
	query := c.Query("q")
	isbn := c.Query("isbn")
	if query == "" && isbn == "" {
		respondValidationError(c, "q or isbn query parameter is required", nil)
		return
	}

	ctx := c.Request.Context()
	var volumes []metadata.Volume
	var err error
	if isbn != "" {
		var volume *metadata.Volume
		volume, err = controller.client.SearchByISBN(ctx, isbn)
		if volume != nil {
			volumes = []metadata.Volume{*volume}
		}
	} else {
		volumes, err = controller.client.Search(ctx, query)
	}

	if err != nil && !errors.Is(err, metadata.ErrNotFound) {
		// Search failures degrade to an empty candidate list.
		log.Printf("Metadata search failed, returning empty result: %v", err)
		volumes = nil
	}

	drafts := metadata.ToDrafts(volumes)
	c.JSON(http.StatusOK, gin.H{"data": drafts, "count": len(drafts)})
}

// GetVolume fetches one volume by its upstream identifier. Unlike Search,
// upstream failures here are propagated to the caller.
func (controller *LookupController) GetVolume(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondValidationError(c, "volume id is required", nil)
		return
	}

	volume, err := controller.client.GetVolume(c.Request.Context(), id)
	switch {
	case errors.Is(err, metadata.ErrNotFound):
		respondNotFound(c, "volume", CodeBookNotFound)
		return
	case errors.Is(err, metadata.ErrUnavailable):
		respondExternalUnavailable(c, "metadata service unavailable")
		return
	case err != nil:
		respondInternalError(c, err, "get volume")
		return
	}

	draft := metadata.ToDraft(*volume)
	c.JSON(http.StatusOK, draft)
}
