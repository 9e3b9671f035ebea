package books

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vkuzmin/shelfmate/internal/entities"
)

var (
	// ErrPageOutOfRange is returned when a progress update would leave the
	// current page negative or past the known total page count.
	ErrPageOutOfRange = errors.New("current page is out of range")

	// ErrInvalidStatus is returned for a status value outside the lifecycle enum.
	ErrInvalidStatus = errors.New("invalid book status")

	// ErrInvalidRating is returned for a rating outside the 0-5 scale.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrInvalidDates is returned when a finish date precedes the start date.
	ErrInvalidDates = errors.New("finish date must not precede start date")

	// ErrBlankTitle is returned when a book is created without a title.
	ErrBlankTitle = errors.New("title is required")

	// ErrInvalidMood is returned for a mood value outside the enum.
	ErrInvalidMood = errors.New("invalid reading mood")

	// ErrUnknownAuthor is returned when an update references an author id
	// that does not exist. The book itself does exist; this is bad input.
	ErrUnknownAuthor = errors.New("author does not exist")

	// ErrUnknownGenre is the genre counterpart of ErrUnknownAuthor.
	ErrUnknownGenre = errors.New("genre does not exist")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpdateFields is the explicit change set for book updates. Nil fields are
// left untouched; there is no dirty-checking auto-save path.
type UpdateFields struct {
	Title         *string
	ISBN          *string
	TotalPages    *int
	Publisher     *string
	PublishedDate *time.Time
	Description   *string
	Rating        *float64
	Notes         *string
	StartedAt     *time.Time
	FinishedAt    *time.Time
	AuthorIDs     []uint
	GenreIDs      []uint
}

// Create persists a new book together with its author/genre memberships.
// The caller may supply an initial status; an empty one defaults to wishlist.
func (r *Repository) Create(book *entities.Book, authorIDs, genreIDs []uint) error {
	if strings.TrimSpace(book.Title) == "" {
		return ErrBlankTitle
	}
	if book.Status == "" {
		book.Status = entities.BookStatusWishlist
	}
	if !entities.ValidBookStatus(book.Status) {
		return ErrInvalidStatus
	}
	if book.Rating != nil && (*book.Rating < 0 || *book.Rating > 5) {
		return ErrInvalidRating
	}
	if book.CurrentPage < 0 || (book.TotalPages != nil && book.CurrentPage > *book.TotalPages) {
		return ErrPageOutOfRange
	}
	if book.Slug == "" {
		book.Slug = generateSlug(book.Title)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Authors", "Genres", "Sessions").Create(book).Error; err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		if err := replaceAuthors(tx, book, authorIDs); err != nil {
			return err
		}
		if err := replaceGenres(tx, book, genreIDs); err != nil {
			return err
		}
		return nil
	})
}

func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Preload("Authors").
		Preload("Genres").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("started_at ASC")
		}).
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns a page of books, newest first, optionally filtered by status.
// Sessions are deliberately not loaded here; list projections only need counts.
func (r *Repository) List(status entities.BookStatus, limit, offset int) ([]entities.Book, int64, error) {
	query := r.db.Model(&entities.Book{})
	if status != "" {
		if !entities.ValidBookStatus(status) {
			return nil, 0, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entities.Book
	err := query.
		Preload("Authors").
		Preload("Genres").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&books).Error
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// Update applies the change set within one transaction and returns the new
// state. Invariants (page range, rating bounds, date ordering) are re-checked
// against the merged result before anything is written.
func (r *Repository) Update(id uint, fields UpdateFields) (*entities.Book, error) {
	var updated *entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}

		if fields.Title != nil {
			if strings.TrimSpace(*fields.Title) == "" {
				return ErrBlankTitle
			}
			book.Title = *fields.Title
		}
		if fields.ISBN != nil {
			book.ISBN = fields.ISBN
		}
		if fields.TotalPages != nil {
			if *fields.TotalPages < book.CurrentPage {
				return ErrPageOutOfRange
			}
			book.TotalPages = fields.TotalPages
		}
		if fields.Publisher != nil {
			book.Publisher = *fields.Publisher
		}
		if fields.PublishedDate != nil {
			book.PublishedDate = fields.PublishedDate
		}
		if fields.Description != nil {
			book.Description = *fields.Description
		}
		if fields.Rating != nil {
			if *fields.Rating < 0 || *fields.Rating > 5 {
				return ErrInvalidRating
			}
			book.Rating = fields.Rating
		}
		if fields.Notes != nil {
			book.Notes = *fields.Notes
		}
		if fields.StartedAt != nil {
			book.StartedAt = fields.StartedAt
		}
		if fields.FinishedAt != nil {
			book.FinishedAt = fields.FinishedAt
		}
		if book.StartedAt != nil && book.FinishedAt != nil && book.FinishedAt.Before(*book.StartedAt) {
			return ErrInvalidDates
		}

		if err := tx.Omit("Authors", "Genres", "Sessions").Save(&book).Error; err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if fields.AuthorIDs != nil {
			if err := replaceAuthors(tx, &book, fields.AuthorIDs); err != nil {
				return err
			}
		}
		if fields.GenreIDs != nil {
			if err := replaceGenres(tx, &book, fields.GenreIDs); err != nil {
				return err
			}
		}
		updated = &book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(updated.ID)
}

func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&book).Association("Authors").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&book).Association("Genres").Clear(); err != nil {
			return err
		}
		// Sessions go with the book via ON DELETE CASCADE.
		return tx.Delete(&book).Error
	})
}

// UpdateProgress moves the current page and keeps status, start date and
// finish date consistent:
//
//   - a first positive page while on the wishlist starts the book (status
//     becomes reading, start date stamped once),
//   - reaching the known total finishes it (finish date stamped once),
//   - finished and abandoned books never change status here; re-opening
//     requires an explicit ChangeStatus call,
//   - dates are monotonic: re-applying the same page value re-stamps nothing.
//
// A positive page delta records a ReadingSession in the same transaction so
// the statistics queries can see per-session activity.
func (r *Repository) UpdateProgress(id uint, newPage int, mood *entities.ReadingMood) (*entities.Book, error) {
	if mood != nil && !entities.ValidReadingMood(*mood) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMood, *mood)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}

		if newPage < 0 {
			return ErrPageOutOfRange
		}
		if book.TotalPages != nil && newPage > *book.TotalPages {
			return ErrPageOutOfRange
		}

		now := time.Now()
		delta := newPage - book.CurrentPage
		book.CurrentPage = newPage

		if newPage > 0 && book.Status == entities.BookStatusWishlist {
			book.Status = entities.BookStatusReading
			if book.StartedAt == nil {
				book.StartedAt = &now
			}
		}
		completed := book.TotalPages != nil && *book.TotalPages > 0 && newPage >= *book.TotalPages
		if completed && book.Status != entities.BookStatusAbandoned && book.Status != entities.BookStatusFinished {
			book.Status = entities.BookStatusFinished
			if book.FinishedAt == nil {
				book.FinishedAt = &now
			}
		}

		if err := tx.Omit("Authors", "Genres", "Sessions").Save(&book).Error; err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		if delta > 0 {
			session := entities.ReadingSession{
				BookID:    book.ID,
				StartedAt: now,
				EndedAt:   &now,
				PagesRead: delta,
				Mood:      mood,
			}
			if err := tx.Create(&session).Error; err != nil {
				return fmt.Errorf("record reading session: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// ChangeStatus sets the lifecycle state directly. Manual transitions are
// sticky: the automatic progress rules never override them afterwards.
// Dates are stamped only when moving into reading/finished with no date set,
// and never cleared.
func (r *Repository) ChangeStatus(id uint, status entities.BookStatus) (*entities.Book, error) {
	if !entities.ValidBookStatus(status) {
		return nil, ErrInvalidStatus
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}

		now := time.Now()
		book.Status = status
		if status == entities.BookStatusReading && book.StartedAt == nil {
			book.StartedAt = &now
		}
		if status == entities.BookStatusFinished && book.FinishedAt == nil {
			book.FinishedAt = &now
		}

		return tx.Omit("Authors", "Genres", "Sessions").Save(&book).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// GetBooksByAuthor returns the books linked to the given author.
func (r *Repository) GetBooksByAuthor(authorID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Joins("JOIN book_authors ba ON ba.book_id = books.id").
		Where("ba.author_id = ?", authorID).
		Preload("Authors").
		Preload("Genres").
		Order("books.created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("get books by author: %w", err)
	}
	return books, nil
}

// GetBooksByGenre returns the books carrying the given genre.
func (r *Repository) GetBooksByGenre(genreID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Joins("JOIN book_genres bg ON bg.book_id = books.id").
		Where("bg.genre_id = ?", genreID).
		Preload("Authors").
		Preload("Genres").
		Order("books.created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("get books by genre: %w", err)
	}
	return books, nil
}

func replaceAuthors(tx *gorm.DB, book *entities.Book, authorIDs []uint) error {
	if authorIDs == nil {
		return nil
	}
	authors := make([]entities.Author, 0, len(authorIDs))
	for _, id := range authorIDs {
		var author entities.Author
		if err := tx.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("author %d: %w", id, ErrUnknownAuthor)
			}
			return fmt.Errorf("author %d: %w", id, err)
		}
		authors = append(authors, author)
	}
	return tx.Model(book).Association("Authors").Replace(&authors)
}

func replaceGenres(tx *gorm.DB, book *entities.Book, genreIDs []uint) error {
	if genreIDs == nil {
		return nil
	}
	genres := make([]entities.Genre, 0, len(genreIDs))
	for _, id := range genreIDs {
		var genre entities.Genre
		if err := tx.First(&genre, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("genre %d: %w", id, ErrUnknownGenre)
			}
			return fmt.Errorf("genre %d: %w", id, err)
		}
		genres = append(genres, genre)
	}
	return tx.Model(book).Association("Genres").Replace(&genres)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9\-]+`)

// generateSlug builds a URL-safe identifier from the title with a short
// random suffix to avoid collisions between same-titled books.
func generateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		s = "book"
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return fmt.Sprintf("%s-%s", s, uuid.New().String()[:8])
}
