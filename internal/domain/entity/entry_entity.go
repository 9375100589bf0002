package entity

import "time"

// Category classifies a catalog entry
type Category string

const (
	CategoryMovie  Category = "Movie"
	CategorySeries Category = "Series"
	CategoryGame   Category = "Game"
)

// Known reports whether c is one of the categories offered by the catalog UI.
func (c Category) Known() bool {
	switch c {
	case CategoryMovie, CategorySeries, CategoryGame:
		return true
	}
	return false
}

// Entry is the aggregate root of the catalog.
// OwnerID is set once at creation; LikedBy holds each identity at most once.
type Entry struct {
	ID          string
	OwnerID     string
	Category    Category
	Name        string
	Image       string
	Rating      float64
	Review      string
	Description string
	LikedBy     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LikeCount returns the number of identities that liked the entry
func (e *Entry) LikeCount() int { return len(e.LikedBy) }
