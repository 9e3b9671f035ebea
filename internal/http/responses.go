package http

import (
	"math"
	"strings"
	"time"

	"github.com/vkuzmin/shelfmate/internal/entities"
)

// BookResponse is the full projection of a book, returned by detail
// endpoints. Derived fields are computed here and never persisted.
type BookResponse struct {
	ID                uint                `json:"id"`
	Slug              string              `json:"slug"`
	Title             string              `json:"title"`
	ISBN              *string             `json:"isbn,omitempty"`
	TotalPages        *int                `json:"total_pages,omitempty"`
	CurrentPage       int                 `json:"current_page"`
	Status            entities.BookStatus `json:"status"`
	Publisher         string              `json:"publisher,omitempty"`
	PublishedDate     *time.Time          `json:"published_date,omitempty"`
	Description       string              `json:"description,omitempty"`
	Rating            *float64            `json:"rating,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	StartedAt         *time.Time          `json:"started_at,omitempty"`
	FinishedAt        *time.Time          `json:"finished_at,omitempty"`
	CompletionPercent *float64            `json:"completion_percent,omitempty"`
	Authors           []AuthorResponse    `json:"authors"`
	Genres            []GenreResponse     `json:"genres"`
	Sessions          []SessionResponse   `json:"sessions"`
	SessionCount      int                 `json:"session_count"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// BookSummary is the trimmed projection used by list endpoints; it carries
// relation counts instead of the full session collection.
type BookSummary struct {
	ID                uint                `json:"id"`
	Slug              string              `json:"slug"`
	Title             string              `json:"title"`
	Status            entities.BookStatus `json:"status"`
	TotalPages        *int                `json:"total_pages,omitempty"`
	CurrentPage       int                 `json:"current_page"`
	Rating            *float64            `json:"rating,omitempty"`
	CompletionPercent *float64            `json:"completion_percent,omitempty"`
	AuthorNames       []string            `json:"author_names"`
	AuthorCount       int                 `json:"author_count"`
	GenreCount        int                 `json:"genre_count"`
	CreatedAt         time.Time           `json:"created_at"`
}

// AuthorResponse projects an author without its book back-reference.
type AuthorResponse struct {
	ID          uint       `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Biography   string     `json:"biography,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Age         *int       `json:"age,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// GenreResponse projects a genre together with its popularity flag. The
// book count is filled only on endpoints that have it computed.
type GenreResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BookCount   *int64    `json:"book_count,omitempty"`
	Popular     *bool     `json:"popular,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionResponse projects a reading session without the book back-reference.
type SessionResponse struct {
	ID        uint                  `json:"id"`
	BookID    uint                  `json:"book_id"`
	StartedAt time.Time             `json:"started_at"`
	EndedAt   *time.Time            `json:"ended_at,omitempty"`
	PagesRead int                   `json:"pages_read"`
	Mood      *entities.ReadingMood `json:"mood,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// ToBookResponse builds the full book projection. A nil book yields nil.
func ToBookResponse(book *entities.Book) *BookResponse {
	if book == nil {
		return nil
	}
	resp := &BookResponse{
		ID:                book.ID,
		Slug:              book.Slug,
		Title:             book.Title,
		ISBN:              book.ISBN,
		TotalPages:        book.TotalPages,
		CurrentPage:       book.CurrentPage,
		Status:            book.Status,
		Publisher:         book.Publisher,
		PublishedDate:     book.PublishedDate,
		Description:       book.Description,
		Rating:            book.Rating,
		Notes:             book.Notes,
		StartedAt:         book.StartedAt,
		FinishedAt:        book.FinishedAt,
		CompletionPercent: completionPercent(book.CurrentPage, book.TotalPages),
		Authors:           make([]AuthorResponse, 0, len(book.Authors)),
		Genres:            make([]GenreResponse, 0, len(book.Genres)),
		Sessions:          make([]SessionResponse, 0, len(book.Sessions)),
		SessionCount:      len(book.Sessions),
		CreatedAt:         book.CreatedAt,
		UpdatedAt:         book.UpdatedAt,
	}
	for i := range book.Authors {
		resp.Authors = append(resp.Authors, *ToAuthorResponse(&book.Authors[i]))
	}
	for i := range book.Genres {
		resp.Genres = append(resp.Genres, *ToGenreResponse(&book.Genres[i]))
	}
	for i := range book.Sessions {
		resp.Sessions = append(resp.Sessions, *ToSessionResponse(&book.Sessions[i]))
	}
	return resp
}

// ToBookSummary builds the list projection for a book.
func ToBookSummary(book *entities.Book) *BookSummary {
	if book == nil {
		return nil
	}
	names := make([]string, 0, len(book.Authors))
	for _, author := range book.Authors {
		names = append(names, fullName(author.FirstName, author.LastName))
	}
	return &BookSummary{
		ID:                book.ID,
		Slug:              book.Slug,
		Title:             book.Title,
		Status:            book.Status,
		TotalPages:        book.TotalPages,
		CurrentPage:       book.CurrentPage,
		Rating:            book.Rating,
		CompletionPercent: completionPercent(book.CurrentPage, book.TotalPages),
		AuthorNames:       names,
		AuthorCount:       len(book.Authors),
		GenreCount:        len(book.Genres),
		CreatedAt:         book.CreatedAt,
	}
}

// ToBookSummaries projects a slice of books for list endpoints.
func ToBookSummaries(books []entities.Book) []BookSummary {
	summaries := make([]BookSummary, 0, len(books))
	for i := range books {
		summaries = append(summaries, *ToBookSummary(&books[i]))
	}
	return summaries
}

// ToAuthorResponse builds the author projection. A nil author yields nil.
func ToAuthorResponse(author *entities.Author) *AuthorResponse {
	if author == nil {
		return nil
	}
	return &AuthorResponse{
		ID:          author.ID,
		FirstName:   author.FirstName,
		LastName:    author.LastName,
		FullName:    fullName(author.FirstName, author.LastName),
		Biography:   author.Biography,
		BirthDate:   author.BirthDate,
		Age:         ageFromBirthDate(author.BirthDate, time.Now()),
		Nationality: author.Nationality,
		CreatedAt:   author.CreatedAt,
	}
}

// ToGenreResponse builds the bare genre projection, without popularity data.
func ToGenreResponse(genre *entities.Genre) *GenreResponse {
	if genre == nil {
		return nil
	}
	return &GenreResponse{
		ID:          genre.ID,
		Name:        genre.Name,
		Description: genre.Description,
		CreatedAt:   genre.CreatedAt,
	}
}

// ToGenreResponseWithCount builds the genre projection including the book
// count and the popularity flag derived from the configured threshold.
func ToGenreResponseWithCount(genre *entities.Genre, bookCount int64, popularThreshold int) *GenreResponse {
	resp := ToGenreResponse(genre)
	if resp == nil {
		return nil
	}
	popular := bookCount >= int64(popularThreshold)
	resp.BookCount = &bookCount
	resp.Popular = &popular
	return resp
}

// ToSessionResponse builds the session projection. A nil session yields nil.
func ToSessionResponse(session *entities.ReadingSession) *SessionResponse {
	if session == nil {
		return nil
	}
	return &SessionResponse{
		ID:        session.ID,
		BookID:    session.BookID,
		StartedAt: session.StartedAt,
		EndedAt:   session.EndedAt,
		PagesRead: session.PagesRead,
		Mood:      session.Mood,
		CreatedAt: session.CreatedAt,
	}
}

// completionPercent returns currentPage/totalPages as a percentage rounded
// to one decimal, or nil when the total is unknown or zero.
func completionPercent(currentPage int, totalPages *int) *float64 {
	if totalPages == nil || *totalPages <= 0 {
		return nil
	}
	pct := float64(currentPage) / float64(*totalPages) * 100
	pct = math.Round(pct*10) / 10
	return &pct
}

// ageFromBirthDate computes a whole-year age at the given time, or nil when
// the birth date is absent.
func ageFromBirthDate(birthDate *time.Time, now time.Time) *int {
	if birthDate == nil {
		return nil
	}
	age := now.Year() - birthDate.Year()
	anniversary := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(anniversary) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return &age
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
