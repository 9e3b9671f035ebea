package authors

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

func TestCreateAuthor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	t.Run("trims names on create", func(t *testing.T) {
		author := &entities.Author{FirstName: "  Ursula ", LastName: " Le Guin "}
		require.NoError(t, repo.Create(author))
		assert.Equal(t, "Ursula", author.FirstName)
		assert.Equal(t, "Le Guin", author.LastName)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		err := repo.Create(&entities.Author{FirstName: "Solo", LastName: "  "})
		assert.ErrorIs(t, err, ErrBlankName)
	})

	t.Run("rejects a future birth date", func(t *testing.T) {
		future := time.Now().Add(24 * time.Hour)
		err := repo.Create(&entities.Author{FirstName: "Time", LastName: "Traveler", BirthDate: &future})
		assert.ErrorIs(t, err, ErrFutureBirthDate)
	})

	t.Run("rejects a duplicate name pair", func(t *testing.T) {
		require.NoError(t, repo.Create(&entities.Author{FirstName: "Iain", LastName: "Banks"}))
		err := repo.Create(&entities.Author{FirstName: "Iain", LastName: "Banks"})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})
}

func TestGetOrCreateAuthor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	first, err := repo.GetOrCreate("Octavia", "Butler")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	again, err := repo.GetOrCreate(" Octavia ", "Butler")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&entities.Author{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// TestGetOrCreateAuthorLosingRace lands a conflicting row between the lookup
// miss and the insert; the loser must re-read the winning row instead of
// surfacing the constraint error.
func TestGetOrCreateAuthorLosingRace(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db.Session(&gorm.Session{SkipDefaultTransaction: true}))

	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("author_race_winner", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "authors" {
			return
		}
		raced = true
		winner := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO authors (first_name, last_name, created_at, updated_at) VALUES (?, ?, ?, ?)",
			"Octavia", "Butler", time.Now(), time.Now())
		require.NoError(t, winner.Error)
	})
	require.NoError(t, err)
	defer db.Callback().Create().Remove("author_race_winner")

	author, err := repo.GetOrCreate("Octavia", "Butler")
	require.NoError(t, err)
	require.True(t, raced, "the conflicting insert never ran")
	assert.NotZero(t, author.ID)
	assert.Equal(t, "Butler", author.LastName)

	var count int64
	require.NoError(t, db.Model(&entities.Author{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateAuthor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	author := &entities.Author{FirstName: "Octavia", LastName: "Butler"}
	require.NoError(t, repo.Create(author))

	t.Run("partial update keeps other fields", func(t *testing.T) {
		bio := "American science fiction author."
		updated, err := repo.Update(author.ID, UpdateFields{Biography: &bio})
		require.NoError(t, err)
		assert.Equal(t, bio, updated.Biography)
		assert.Equal(t, "Octavia", updated.FirstName)
	})

	t.Run("re-validates the merged result", func(t *testing.T) {
		blank := "  "
		_, err := repo.Update(author.ID, UpdateFields{LastName: &blank})
		assert.ErrorIs(t, err, ErrBlankName)

		future := time.Now().Add(24 * time.Hour)
		_, err = repo.Update(author.ID, UpdateFields{BirthDate: &future})
		assert.ErrorIs(t, err, ErrFutureBirthDate)
	})

	t.Run("unknown author yields record not found", func(t *testing.T) {
		name := "Ghost"
		_, err := repo.Update(99999, UpdateFields{FirstName: &name})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestGetAllAuthorsOrdering(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	require.NoError(t, repo.Create(&entities.Author{FirstName: "Iain", LastName: "Banks"}))
	require.NoError(t, repo.Create(&entities.Author{FirstName: "Octavia", LastName: "Butler"}))
	require.NoError(t, repo.Create(&entities.Author{FirstName: "Anne", LastName: "Banks"}))

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Anne", all[0].FirstName)
	assert.Equal(t, "Iain", all[1].FirstName)
	assert.Equal(t, "Butler", all[2].LastName)
}

func TestDeleteAuthor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	author := &entities.Author{FirstName: "Iain", LastName: "Banks"}
	require.NoError(t, repo.Create(author))

	book := entities.Book{Title: "Consider Phlebas", Slug: "consider-phlebas", Authors: []entities.Author{*author}}
	require.NoError(t, db.Create(&book).Error)

	require.NoError(t, repo.Delete(author.ID))

	_, err := repo.GetByID(author.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var survivor entities.Book
	require.NoError(t, db.Preload("Authors").First(&survivor, book.ID).Error)
	assert.Empty(t, survivor.Authors)
}
