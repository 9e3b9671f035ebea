package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/database/authors"
	"github.com/vkuzmin/shelfmate/internal/database/books"
	"github.com/vkuzmin/shelfmate/internal/database/genres"
	"github.com/vkuzmin/shelfmate/internal/entities"
)

// BooksController serves the book CRUD surface plus the progress and
// status lifecycle endpoints.
type BooksController struct {
	books   *books.Repository
	authors *authors.Repository
	genres  *genres.Repository
}

func NewBooksController(bookRepo *books.Repository, authorRepo *authors.Repository, genreRepo *genres.Repository) *BooksController {
	return &BooksController{
		books:   bookRepo,
		authors: authorRepo,
		genres:  genreRepo,
	}
}

// authorInput names an author in a creation request; existing authors are
// reused, unknown ones are created.
type authorInput struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type createBookRequest struct {
	Title         string        `json:"title" binding:"required"`
	ISBN          *string       `json:"isbn"`
	TotalPages    *int          `json:"total_pages"`
	CurrentPage   int           `json:"current_page"`
	Status        string        `json:"status"`
	Publisher     string        `json:"publisher"`
	PublishedDate *time.Time    `json:"published_date"`
	Description   string        `json:"description"`
	Rating        *float64      `json:"rating"`
	Notes         string        `json:"notes"`
	Authors       []authorInput `json:"authors"`
	Genres        []string      `json:"genres"`
}

type updateBookRequest struct {
	Title         *string    `json:"title"`
	ISBN          *string    `json:"isbn"`
	TotalPages    *int       `json:"total_pages"`
	Publisher     *string    `json:"publisher"`
	PublishedDate *time.Time `json:"published_date"`
	Description   *string    `json:"description"`
	Rating        *float64   `json:"rating"`
	Notes         *string    `json:"notes"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	AuthorIDs     []uint     `json:"author_ids"`
	GenreIDs      []uint     `json:"genre_ids"`
}

type progressRequest struct {
	CurrentPage *int                  `json:"current_page" binding:"required"`
	Mood        *entities.ReadingMood `json:"mood"`
}

type statusRequest struct {
	Status entities.BookStatus `json:"status" binding:"required"`
}

func (controller *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	authorIDs, err := controller.resolveAuthors(req.Authors)
	if err != nil {
		controller.respondBookError(c, err, "create book authors")
		return
	}
	genreIDs, err := controller.resolveGenres(req.Genres)
	if err != nil {
		controller.respondBookError(c, err, "create book genres")
		return
	}

	book := entities.Book{
		Title:         req.Title,
		ISBN:          req.ISBN,
		TotalPages:    req.TotalPages,
		CurrentPage:   req.CurrentPage,
		Status:        entities.BookStatus(req.Status),
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		Description:   req.Description,
		Rating:        req.Rating,
		Notes:         req.Notes,
	}
	if err := controller.books.Create(&book, authorIDs, genreIDs); err != nil {
		controller.respondBookError(c, err, "create book")
		return
	}

	created, err := controller.books.GetByID(book.ID)
	if err != nil {
		respondInternalError(c, err, "reload created book")
		return
	}
	respondCreated(c, ToBookResponse(created))
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := controller.books.GetByID(id)
	if err != nil {
		controller.respondBookError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, ToBookResponse(book))
}

func (controller *BooksController) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c)
	status := entities.BookStatus(c.Query("status"))

	list, total, err := controller.books.List(status, limit, offset)
	if err != nil {
		controller.respondBookError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    ToBookSummaries(list),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(list)) < total,
	})
}

func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	book, err := controller.books.Update(id, books.UpdateFields{
		Title:         req.Title,
		ISBN:          req.ISBN,
		TotalPages:    req.TotalPages,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		Description:   req.Description,
		Rating:        req.Rating,
		Notes:         req.Notes,
		StartedAt:     req.StartedAt,
		FinishedAt:    req.FinishedAt,
		AuthorIDs:     req.AuthorIDs,
		GenreIDs:      req.GenreIDs,
	})
	if err != nil {
		controller.respondBookError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, ToBookResponse(book))
}

func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := controller.books.Delete(id); err != nil {
		controller.respondBookError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// UpdateProgress applies the lifecycle rules for a progress report and
// returns the updated book projection.
func (controller *BooksController) UpdateProgress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	book, err := controller.books.UpdateProgress(id, *req.CurrentPage, req.Mood)
	if err != nil {
		controller.respondBookError(c, err, "update progress")
		return
	}
	c.JSON(http.StatusOK, ToBookResponse(book))
}

// ChangeStatus sets the lifecycle status directly, without touching page
// counters.
func (controller *BooksController) ChangeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	book, err := controller.books.ChangeStatus(id, req.Status)
	if err != nil {
		controller.respondBookError(c, err, "change status")
		return
	}
	c.JSON(http.StatusOK, ToBookResponse(book))
}

func (controller *BooksController) resolveAuthors(inputs []authorInput) ([]uint, error) {
	ids := make([]uint, 0, len(inputs))
	for _, input := range inputs {
		author, err := controller.authors.GetOrCreate(input.FirstName, input.LastName)
		if err != nil {
			return nil, err
		}
		ids = append(ids, author.ID)
	}
	return ids, nil
}

func (controller *BooksController) resolveGenres(names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		genre, err := controller.genres.GetOrCreate(name, "")
		if err != nil {
			return nil, err
		}
		ids = append(ids, genre.ID)
	}
	return ids, nil
}

// respondBookError maps repository errors onto the response taxonomy.
func (controller *BooksController) respondBookError(c *gin.Context, err error, context string) {
	switch {
	case isNotFound(err):
		respondNotFound(c, "book", CodeBookNotFound)
	case isDuplicate(err):
		respondConflict(c, "a book with this ISBN or title already exists")
	case errors.Is(err, books.ErrPageOutOfRange),
		errors.Is(err, books.ErrInvalidStatus),
		errors.Is(err, books.ErrInvalidRating),
		errors.Is(err, books.ErrInvalidDates),
		errors.Is(err, books.ErrBlankTitle),
		errors.Is(err, books.ErrInvalidMood),
		errors.Is(err, books.ErrUnknownAuthor),
		errors.Is(err, books.ErrUnknownGenre),
		errors.Is(err, authors.ErrBlankName),
		errors.Is(err, genres.ErrBlankName):
		respondValidationError(c, err.Error(), nil)
	default:
		respondInternalError(c, err, context)
	}
}
