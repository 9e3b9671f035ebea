package sessions

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vkuzmin/shelfmate/internal/database"
	"github.com/vkuzmin/shelfmate/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, cleanup
}

func createBook(t *testing.T, db *gorm.DB, title string) *entities.Book {
	t.Helper()
	book := entities.Book{Title: title, Slug: title}
	require.NoError(t, db.Create(&book).Error)
	return &book
}

func TestCreateSession(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	book := createBook(t, db, "tracked")

	t.Run("defaults the start time", func(t *testing.T) {
		session := &entities.ReadingSession{BookID: book.ID, PagesRead: 12}
		require.NoError(t, repo.Create(session))
		assert.NotZero(t, session.ID)
		assert.False(t, session.StartedAt.IsZero())
		assert.Nil(t, session.EndedAt)
	})

	t.Run("rejects negative pages", func(t *testing.T) {
		err := repo.Create(&entities.ReadingSession{BookID: book.ID, PagesRead: -5})
		assert.ErrorIs(t, err, ErrNegativePages)
	})

	t.Run("rejects an end before the start", func(t *testing.T) {
		start := time.Now()
		end := start.Add(-time.Hour)
		err := repo.Create(&entities.ReadingSession{BookID: book.ID, StartedAt: start, EndedAt: &end})
		assert.ErrorIs(t, err, ErrEndBeforeStart)
	})

	t.Run("rejects an unknown mood", func(t *testing.T) {
		mood := entities.ReadingMood("grumpy")
		err := repo.Create(&entities.ReadingSession{BookID: book.ID, Mood: &mood})
		assert.ErrorIs(t, err, ErrInvalidMood)
	})

	t.Run("rejects a session for a missing book", func(t *testing.T) {
		err := repo.Create(&entities.ReadingSession{BookID: 99999, PagesRead: 10})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestGetForBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	book := createBook(t, db, "ordered")
	other := createBook(t, db, "other")

	base := time.Now()
	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		session := &entities.ReadingSession{BookID: book.ID, StartedAt: base.Add(offset), PagesRead: i + 1}
		require.NoError(t, repo.Create(session))
	}
	require.NoError(t, repo.Create(&entities.ReadingSession{BookID: other.ID, PagesRead: 99}))

	list, err := repo.GetForBook(book.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Oldest first.
	assert.Equal(t, 2, list[0].PagesRead)
	assert.Equal(t, 3, list[1].PagesRead)
	assert.Equal(t, 1, list[2].PagesRead)
}

func TestUpdateSession(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	book := createBook(t, db, "amended")

	session := &entities.ReadingSession{BookID: book.ID, PagesRead: 10}
	require.NoError(t, repo.Create(session))

	t.Run("closing an open session", func(t *testing.T) {
		end := session.StartedAt.Add(30 * time.Minute)
		pages := 25
		updated, err := repo.Update(session.ID, UpdateFields{EndedAt: &end, PagesRead: &pages})
		require.NoError(t, err)
		require.NotNil(t, updated.EndedAt)
		assert.Equal(t, 25, updated.PagesRead)
	})

	t.Run("re-validates the merged result", func(t *testing.T) {
		bad := session.StartedAt.Add(-time.Hour)
		_, err := repo.Update(session.ID, UpdateFields{EndedAt: &bad})
		assert.ErrorIs(t, err, ErrEndBeforeStart)

		negative := -1
		_, err = repo.Update(session.ID, UpdateFields{PagesRead: &negative})
		assert.ErrorIs(t, err, ErrNegativePages)
	})

	t.Run("unknown session yields record not found", func(t *testing.T) {
		pages := 5
		_, err := repo.Update(99999, UpdateFields{PagesRead: &pages})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestDeleteSession(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	book := createBook(t, db, "cleared")

	session := &entities.ReadingSession{BookID: book.ID, PagesRead: 10}
	require.NoError(t, repo.Create(session))

	require.NoError(t, repo.Delete(session.ID))
	assert.ErrorIs(t, repo.Delete(session.ID), gorm.ErrRecordNotFound)
}
