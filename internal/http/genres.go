package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/database/books"
	"github.com/vkuzmin/shelfmate/internal/database/genres"
)

// GenresController serves genre CRUD; creation goes through the
// normalization layer so spelling variants collapse into one row.
type GenresController struct {
	genres           *genres.Repository
	books            *books.Repository
	popularThreshold int
}

func NewGenresController(genreRepo *genres.Repository, bookRepo *books.Repository, popularThreshold int) *GenresController {
	return &GenresController{
		genres:           genreRepo,
		books:            bookRepo,
		popularThreshold: popularThreshold,
	}
}

type createGenreRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (controller *GenresController) CreateGenre(c *gin.Context) {
	var req createGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	genre, err := controller.genres.GetOrCreate(req.Name, req.Description)
	if err != nil {
		controller.respondGenreError(c, err, "create genre")
		return
	}
	respondCreated(c, ToGenreResponse(genre))
}

func (controller *GenresController) GetGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	genre, err := controller.genres.GetByID(id)
	if err != nil {
		controller.respondGenreError(c, err, "get genre")
		return
	}

	counts, err := controller.genres.BookCounts()
	if err != nil {
		respondInternalError(c, err, "genre book counts")
		return
	}
	c.JSON(http.StatusOK, ToGenreResponseWithCount(genre, counts[genre.ID], controller.popularThreshold))
}

func (controller *GenresController) ListGenres(c *gin.Context) {
	list, err := controller.genres.GetAll()
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}
	counts, err := controller.genres.BookCounts()
	if err != nil {
		respondInternalError(c, err, "genre book counts")
		return
	}

	responses := make([]GenreResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *ToGenreResponseWithCount(&list[i], counts[list[i].ID], controller.popularThreshold))
	}
	c.JSON(http.StatusOK, gin.H{"data": responses, "count": len(responses)})
}

func (controller *GenresController) DeleteGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.genres.Delete(id); err != nil {
		controller.respondGenreError(c, err, "delete genre")
		return
	}
	respondSuccess(c, "genre deleted")
}

// GetGenreBooks lists the books carrying one genre.
func (controller *GenresController) GetGenreBooks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := controller.genres.GetByID(id); err != nil {
		controller.respondGenreError(c, err, "get genre")
		return
	}
	list, err := controller.books.GetBooksByGenre(id)
	if err != nil {
		respondInternalError(c, err, "books by genre")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ToBookSummaries(list), "count": len(list)})
}

func (controller *GenresController) respondGenreError(c *gin.Context, err error, context string) {
	switch {
	case isNotFound(err):
		respondNotFound(c, "genre", CodeGenreNotFound)
	case isDuplicate(err):
		respondConflict(c, "a genre with this name already exists")
	case errors.Is(err, genres.ErrBlankName):
		respondValidationError(c, err.Error(), nil)
	default:
		respondInternalError(c, err, context)
	}
}
