package stats

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/vkuzmin/shelfmate/internal/entities"
)

// Repository computes read-only aggregate statistics over books and reading
// sessions. Every method is side-effect free and deterministic for a given
// database snapshot.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DashboardSummary is the top-level statistics view. AverageTotalPages is nil
// when no book has a known page count, distinguishing "no data" from zero.
type DashboardSummary struct {
	TotalBooks        int64            `json:"total_books"`
	ByStatus          map[string]int64 `json:"by_status"`
	CompletionRate    float64          `json:"completion_rate"`
	AverageTotalPages *float64         `json:"average_total_pages"`
}

// YearCount is the number of books finished in one calendar year.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// GenreCount is the number of books carrying one genre.
type GenreCount struct {
	GenreID uint   `json:"genre_id"`
	Name    string `json:"name"`
	Count   int64  `json:"count"`
}

// MoodStat summarizes the sessions recorded with one mood.
type MoodStat struct {
	Mood         entities.ReadingMood `json:"mood"`
	SessionCount int64                `json:"session_count"`
	AvgPages     float64              `json:"avg_pages"`
}

// Dashboard returns totals, per-status counts (all statuses zero-filled),
// the completion rate as a percentage rounded to one decimal, and the average
// page count over books with a known total.
func (r *Repository) Dashboard() (*DashboardSummary, error) {
	type statusRow struct {
		Status string
		Count  int64
	}
	var rows []statusRow
	err := r.db.Model(&entities.Book{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count books by status: %w", err)
	}

	byStatus := map[string]int64{
		string(entities.BookStatusWishlist):  0,
		string(entities.BookStatusReading):   0,
		string(entities.BookStatusFinished):  0,
		string(entities.BookStatusAbandoned): 0,
		string(entities.BookStatusOnHold):    0,
	}
	var total int64
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		total += row.Count
	}

	summary := &DashboardSummary{
		TotalBooks: total,
		ByStatus:   byStatus,
	}
	if total > 0 {
		finished := byStatus[string(entities.BookStatusFinished)]
		summary.CompletionRate = roundOneDecimal(float64(finished) / float64(total) * 100)
	}

	var avg struct {
		Avg   *float64
		Known int64
	}
	err = r.db.Model(&entities.Book{}).
		Select("AVG(total_pages) AS avg, COUNT(total_pages) AS known").
		Where("total_pages IS NOT NULL").
		Scan(&avg).Error
	if err != nil {
		return nil, fmt.Errorf("average page count: %w", err)
	}
	if avg.Known > 0 && avg.Avg != nil {
		rounded := roundOneDecimal(*avg.Avg)
		summary.AverageTotalPages = &rounded
	}

	return summary, nil
}

// FinishedInYear counts books finished within the given calendar year.
func (r *Repository) FinishedInYear(year int) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("status = ?", entities.BookStatusFinished).
		Where("finished_at IS NOT NULL").
		Where("CAST(strftime('%Y', finished_at) AS INTEGER) = ?", year).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count finished in year: %w", err)
	}
	return count, nil
}

// YearlyHistory returns finished-book counts grouped by year, newest first.
func (r *Repository) YearlyHistory() ([]YearCount, error) {
	var rows []YearCount
	err := r.db.Model(&entities.Book{}).
		Select("CAST(strftime('%Y', finished_at) AS INTEGER) AS year, COUNT(*) AS count").
		Where("status = ?", entities.BookStatusFinished).
		Where("finished_at IS NOT NULL").
		Group("year").
		Order("year DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("yearly history: %w", err)
	}
	return rows, nil
}

// GenrePopularity returns per-genre book counts, most popular first, ties
// broken by genre name.
func (r *Repository) GenrePopularity() ([]GenreCount, error) {
	var rows []GenreCount
	err := r.db.Table("genres").
		Select("genres.id AS genre_id, genres.name AS name, COUNT(bg.book_id) AS count").
		Joins("LEFT JOIN book_genres bg ON bg.genre_id = genres.id").
		Group("genres.id, genres.name").
		Order("count DESC, genres.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("genre popularity: %w", err)
	}
	return rows, nil
}

// MoodStatistics returns session counts and average pages per observed mood.
// Moods that never occur are omitted rather than zero-filled.
func (r *Repository) MoodStatistics() ([]MoodStat, error) {
	var rows []MoodStat
	err := r.db.Model(&entities.ReadingSession{}).
		Select("mood, COUNT(*) AS session_count, AVG(pages_read) AS avg_pages").
		Where("mood IS NOT NULL").
		Group("mood").
		Order("session_count DESC, mood ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("mood statistics: %w", err)
	}
	for i := range rows {
		rows[i].AvgPages = roundOneDecimal(rows[i].AvgPages)
	}
	return rows, nil
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
