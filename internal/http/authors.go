package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/database/authors"
	"github.com/vkuzmin/shelfmate/internal/database/books"
	"github.com/vkuzmin/shelfmate/internal/entities"
)

type AuthorsController struct {
	authors *authors.Repository
	books   *books.Repository
}

func NewAuthorsController(authorRepo *authors.Repository, bookRepo *books.Repository) *AuthorsController {
	return &AuthorsController{authors: authorRepo, books: bookRepo}
}

type createAuthorRequest struct {
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	Biography   string     `json:"biography"`
	BirthDate   *time.Time `json:"birth_date"`
	Nationality string     `json:"nationality"`
}

type updateAuthorRequest struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	Biography   *string    `json:"biography"`
	BirthDate   *time.Time `json:"birth_date"`
	Nationality *string    `json:"nationality"`
}

func (controller *AuthorsController) CreateAuthor(c *gin.Context) {
	var req createAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	author := entities.Author{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Biography:   req.Biography,
		BirthDate:   req.BirthDate,
		Nationality: req.Nationality,
	}
	if err := controller.authors.Create(&author); err != nil {
		controller.respondAuthorError(c, err, "create author")
		return
	}
	respondCreated(c, ToAuthorResponse(&author))
}

func (controller *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := controller.authors.GetByID(id)
	if err != nil {
		controller.respondAuthorError(c, err, "get author")
		return
	}
	c.JSON(http.StatusOK, ToAuthorResponse(author))
}

func (controller *AuthorsController) ListAuthors(c *gin.Context) {
	list, err := controller.authors.GetAll()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	responses := make([]AuthorResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *ToAuthorResponse(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": responses, "count": len(responses)})
}

func (controller *AuthorsController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	author, err := controller.authors.Update(id, authors.UpdateFields{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Biography:   req.Biography,
		BirthDate:   req.BirthDate,
		Nationality: req.Nationality,
	})
	if err != nil {
		controller.respondAuthorError(c, err, "update author")
		return
	}
	c.JSON(http.StatusOK, ToAuthorResponse(author))
}

func (controller *AuthorsController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.authors.Delete(id); err != nil {
		controller.respondAuthorError(c, err, "delete author")
		return
	}
	respondSuccess(c, "author deleted")
}

// GetAuthorBooks lists the books linked to one author.
func (controller *AuthorsController) GetAuthorBooks(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := controller.authors.GetByID(id); err != nil {
		controller.respondAuthorError(c, err, "get author")
		return
	}
	list, err := controller.books.GetBooksByAuthor(id)
	if err != nil {
		respondInternalError(c, err, "books by author")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ToBookSummaries(list), "count": len(list)})
}

func (controller *AuthorsController) respondAuthorError(c *gin.Context, err error, context string) {
	switch {
	case isNotFound(err):
		respondNotFound(c, "author", CodeAuthorNotFound)
	case isDuplicate(err):
		respondConflict(c, "an author with this name already exists")
	case errors.Is(err, authors.ErrBlankName), errors.Is(err, authors.ErrFutureBirthDate):
		respondValidationError(c, err.Error(), nil)
	default:
		respondInternalError(c, err, context)
	}
}
