package authors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vkuzmin/shelfmate/internal/entities"
)

var (
	// ErrBlankName is returned when first or last name is missing.
	ErrBlankName = errors.New("first and last name are required")

	// ErrFutureBirthDate is returned for a birth date in the future.
	ErrFutureBirthDate = errors.New("birth date must not be in the future")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpdateFields is the explicit change set for author updates.
type UpdateFields struct {
	FirstName   *string
	LastName    *string
	Biography   *string
	BirthDate   *time.Time
	Nationality *string
}

func validate(firstName, lastName string, birthDate *time.Time) error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return ErrBlankName
	}
	if birthDate != nil && birthDate.After(time.Now()) {
		return ErrFutureBirthDate
	}
	return nil
}

func (r *Repository) Create(author *entities.Author) error {
	author.FirstName = strings.TrimSpace(author.FirstName)
	author.LastName = strings.TrimSpace(author.LastName)
	if err := validate(author.FirstName, author.LastName, author.BirthDate); err != nil {
		return err
	}
	if err := r.db.Create(author).Error; err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	return nil
}

// GetOrCreate finds an author by name, creating one on first use. The unique
// index on (first_name, last_name) makes this safe under concurrent creation.
func (r *Repository) GetOrCreate(firstName, lastName string) (*entities.Author, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if err := validate(firstName, lastName, nil); err != nil {
		return nil, err
	}

	var author entities.Author
	err := r.db.Where("first_name = ? AND last_name = ?", firstName, lastName).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup author: %w", err)
	}

	author = entities.Author{FirstName: firstName, LastName: lastName}
	err = r.db.Create(&author).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if err := r.db.Where("first_name = ? AND last_name = ?", firstName, lastName).First(&author).Error; err != nil {
			return nil, fmt.Errorf("re-read author after conflict: %w", err)
		}
		return &author, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return &author, nil
}

func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *Repository) GetAll() ([]entities.Author, error) {
	var authors []entities.Author
	if err := r.db.Order("last_name ASC, first_name ASC").Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("get authors: %w", err)
	}
	return authors, nil
}

func (r *Repository) Update(id uint, fields UpdateFields) (*entities.Author, error) {
	var updated *entities.Author
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		if err := tx.First(&author, id).Error; err != nil {
			return err
		}

		if fields.FirstName != nil {
			author.FirstName = strings.TrimSpace(*fields.FirstName)
		}
		if fields.LastName != nil {
			author.LastName = strings.TrimSpace(*fields.LastName)
		}
		if fields.Biography != nil {
			author.Biography = *fields.Biography
		}
		if fields.BirthDate != nil {
			author.BirthDate = fields.BirthDate
		}
		if fields.Nationality != nil {
			author.Nationality = *fields.Nationality
		}

		if err := validate(author.FirstName, author.LastName, author.BirthDate); err != nil {
			return err
		}
		if err := tx.Save(&author).Error; err != nil {
			return fmt.Errorf("update author: %w", err)
		}
		updated = &author
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		if err := tx.First(&author, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&author).Association("Books").Clear(); err != nil {
			return err
		}
		return tx.Delete(&author).Error
	})
}
