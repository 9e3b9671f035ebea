package genres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vkuzmin/shelfmate/internal/entities"
)

// ErrBlankName is returned when a genre name normalizes to the empty string.
var ErrBlankName = errors.New("genre name is required")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the genre whose normalized name matches the input,
// creating it on first use. The unique index on genres.name makes this safe
// under concurrent creation: the losing writer re-reads the winning row.
func (r *Repository) GetOrCreate(name, description string) (*entities.Genre, error) {
	normalized := Normalize(name)
	if normalized == "" {
		return nil, ErrBlankName
	}

	var genre entities.Genre
	err := r.db.Where("name = ?", normalized).First(&genre).Error
	if err == nil {
		return &genre, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup genre: %w", err)
	}

	genre = entities.Genre{Name: normalized, Description: strings.TrimSpace(description)}
	err = r.db.Create(&genre).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Concurrent creation raced us; the existing row wins.
		if err := r.db.Where("name = ?", normalized).First(&genre).Error; err != nil {
			return nil, fmt.Errorf("re-read genre after conflict: %w", err)
		}
		return &genre, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create genre: %w", err)
	}
	return &genre, nil
}

func (r *Repository) GetByID(id uint) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.First(&genre, id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// GetByName looks a genre up by its normalized name.
func (r *Repository) GetByName(name string) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.Where("name = ?", Normalize(name)).First(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *Repository) GetAll() ([]entities.Genre, error) {
	var genres []entities.Genre
	if err := r.db.Order("name ASC").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return genres, nil
}

// BookCounts returns the number of books per genre id, for the "popular"
// projection flag, without materializing any book rows.
func (r *Repository) BookCounts() (map[uint]int64, error) {
	type row struct {
		GenreID uint
		Count   int64
	}
	var rows []row
	err := r.db.
		Table("book_genres").
		Select("genre_id, COUNT(book_id) AS count").
		Group("genre_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count books per genre: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.GenreID] = r.Count
	}
	return counts, nil
}

func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var genre entities.Genre
		if err := tx.First(&genre, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&genre).Association("Books").Clear(); err != nil {
			return err
		}
		return tx.Delete(&genre).Error
	})
}
