package sessions

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vkuzmin/shelfmate/internal/entities"
)

var (
	// ErrNegativePages is returned when a session claims negative pages read.
	ErrNegativePages = errors.New("pages read must not be negative")

	// ErrEndBeforeStart is returned when a session ends before it started.
	ErrEndBeforeStart = errors.New("end time must not precede start time")

	// ErrInvalidMood is returned for a mood value outside the enum.
	ErrInvalidMood = errors.New("invalid reading mood")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpdateFields is the explicit change set for amending or closing a session.
type UpdateFields struct {
	EndedAt   *time.Time
	PagesRead *int
	Mood      *entities.ReadingMood
}

func validate(session *entities.ReadingSession) error {
	if session.PagesRead < 0 {
		return ErrNegativePages
	}
	if session.EndedAt != nil && session.EndedAt.Before(session.StartedAt) {
		return ErrEndBeforeStart
	}
	if session.Mood != nil && !entities.ValidReadingMood(*session.Mood) {
		return ErrInvalidMood
	}
	return nil
}

// Create records a session for an existing book. The owning book is checked
// inside the transaction so a concurrent book deletion cannot orphan the row.
func (r *Repository) Create(session *entities.ReadingSession) error {
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if err := validate(session); err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, session.BookID).Error; err != nil {
			return err
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("create reading session: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetByID(id uint) (*entities.ReadingSession, error) {
	var session entities.ReadingSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetForBook returns a book's sessions in start order, newest last.
func (r *Repository) GetForBook(bookID uint) ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Where("book_id = ?", bookID).Order("started_at ASC").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("get sessions for book: %w", err)
	}
	return sessions, nil
}

// Update amends an open or closed session. Setting EndedAt closes it.
func (r *Repository) Update(id uint, fields UpdateFields) (*entities.ReadingSession, error) {
	var updated *entities.ReadingSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var session entities.ReadingSession
		if err := tx.First(&session, id).Error; err != nil {
			return err
		}

		if fields.EndedAt != nil {
			session.EndedAt = fields.EndedAt
		}
		if fields.PagesRead != nil {
			session.PagesRead = *fields.PagesRead
		}
		if fields.Mood != nil {
			session.Mood = fields.Mood
		}

		if err := validate(&session); err != nil {
			return err
		}
		if err := tx.Save(&session).Error; err != nil {
			return fmt.Errorf("update reading session: %w", err)
		}
		updated = &session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.ReadingSession{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
