package metadata

import (
	"strings"
	"time"
)

// maxCandidates caps how many author and genre names one draft carries.
const maxCandidates = 3

// BookDraft is a candidate book assembled from an external volume. It is a
// suggestion only; persisting it goes through the regular creation flow, so
// lifecycle and genre normalization rules still apply.
type BookDraft struct {
	VolumeID      string     `json:"volume_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	TotalPages    *int       `json:"total_pages,omitempty"`
	AuthorNames   []string   `json:"author_names,omitempty"`
	GenreNames    []string   `json:"genre_names,omitempty"`
}

// ToDraft converts a volume into a draft book.
func ToDraft(v Volume) BookDraft {
	info := v.VolumeInfo
	title := info.Title
	if info.Subtitle != "" {
		title = title + ": " + info.Subtitle
	}

	draft := BookDraft{
		VolumeID:      v.ID,
		Title:         title,
		Description:   info.Description,
		ISBN:          pickISBN(info.IndustryIdentifiers),
		Publisher:     info.Publisher,
		PublishedDate: ParsePublishedDate(info.PublishedDate),
		AuthorNames:   capList(info.Authors),
		GenreNames:    capList(info.Categories),
	}
	if info.PageCount > 0 {
		pages := info.PageCount
		draft.TotalPages = &pages
	}
	return draft
}

// ToDrafts converts a result list, skipping volumes without a title.
func ToDrafts(volumes []Volume) []BookDraft {
	drafts := make([]BookDraft, 0, len(volumes))
	for _, v := range volumes {
		if strings.TrimSpace(v.VolumeInfo.Title) == "" {
			continue
		}
		drafts = append(drafts, ToDraft(v))
	}
	return drafts
}

// pickISBN prefers ISBN-13 over ISBN-10.
func pickISBN(ids []IndustryIdentifier) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}

// ParsePublishedDate accepts year, year-month and full-date forms as emitted
// by the Google Books API. Anything else yields nil.
func ParsePublishedDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func capList(names []string) []string {
	out := make([]string, 0, maxCandidates)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, name)
		if len(out) == maxCandidates {
			break
		}
	}
	return out
}
