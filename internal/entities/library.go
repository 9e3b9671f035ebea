package entities

import (
	"time"
)

type BookStatus string

const (
	BookStatusWishlist  BookStatus = "wishlist"
	BookStatusReading   BookStatus = "reading"
	BookStatusFinished  BookStatus = "finished"
	BookStatusAbandoned BookStatus = "abandoned"
	BookStatusOnHold    BookStatus = "on_hold"
)

// ValidBookStatus reports whether s is one of the known lifecycle states.
func ValidBookStatus(s BookStatus) bool {
	switch s {
	case BookStatusWishlist, BookStatusReading, BookStatusFinished,
		BookStatusAbandoned, BookStatusOnHold:
		return true
	}
	return false
}

type ReadingMood string

const (
	MoodExcited   ReadingMood = "excited"
	MoodRelaxed   ReadingMood = "relaxed"
	MoodFocused   ReadingMood = "focused"
	MoodTired     ReadingMood = "tired"
	MoodBored     ReadingMood = "bored"
	MoodInspired  ReadingMood = "inspired"
	MoodConfused  ReadingMood = "confused"
	MoodNostalgic ReadingMood = "nostalgic"
)

// ValidReadingMood reports whether m is one of the known moods.
func ValidReadingMood(m ReadingMood) bool {
	switch m {
	case MoodExcited, MoodRelaxed, MoodFocused, MoodTired,
		MoodBored, MoodInspired, MoodConfused, MoodNostalgic:
		return true
	}
	return false
}

type Book struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Slug          string     `gorm:"uniqueIndex;size:200" json:"slug"`
	Title         string     `gorm:"index;size:512;not null" json:"title"`
	ISBN          *string    `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`
	TotalPages    *int       `json:"total_pages,omitempty"`
	CurrentPage   int        `gorm:"default:0" json:"current_page"`
	Status        BookStatus `gorm:"size:20;default:'wishlist';index" json:"status"`
	Publisher     string     `gorm:"size:256" json:"publisher,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`

	Authors  []Author         `gorm:"many2many:book_authors;" json:"authors,omitempty"`
	Genres   []Genre          `gorm:"many2many:book_genres;" json:"genres,omitempty"`
	Sessions []ReadingSession `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"sessions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FirstName   string     `gorm:"size:100;not null;uniqueIndex:idx_author_name" json:"first_name"`
	LastName    string     `gorm:"size:100;not null;uniqueIndex:idx_author_name" json:"last_name"`
	Biography   string     `gorm:"type:text" json:"biography,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Nationality string     `gorm:"size:100" json:"nationality,omitempty"`

	// Back-reference exists at the storage layer only; serialization goes
	// through the projection layer to keep relation traversal bounded.
	Books []Book `gorm:"many2many:book_authors;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Genre struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Books []Book `gorm:"many2many:book_genres;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReadingSession records a single interval of reading activity for one book.
// A session with a nil EndedAt is still in progress.
type ReadingSession struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	BookID    uint         `gorm:"index;not null" json:"book_id"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	PagesRead int          `gorm:"default:0" json:"pages_read"`
	Mood      *ReadingMood `gorm:"size:20" json:"mood,omitempty"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Author) TableName() string {
	return "authors"
}

func (Genre) TableName() string {
	return "genres"
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}
