package repository

import (
	"context"
	"errors"
	"iter"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no entry exists for the given id.
	ErrNotFound = errors.New("entry not found")
	// ErrNotOwner is returned by owner-conditional writes when the entry exists
	// but belongs to someone else.
	ErrNotOwner = errors.New("entry owned by another identity")
)

// EntryPatch carries the mutable fields of an entry. OwnerID and LikedBy are
// never patched.
type EntryPatch struct {
	Category    entity.Category
	Name        string
	Image       string
	Rating      float64
	Review      string
	Description string
}

// EntryRepository defines the storage operations for catalog entries.
type EntryRepository interface {
	// Create stores e, assigning ID and timestamps. LikedBy starts empty.
	Create(ctx context.Context, e *entity.Entry) (*entity.Entry, error)
	Get(ctx context.Context, id string) (*entity.Entry, error)
	// List yields every entry, newest first.
	List(ctx context.Context) iter.Seq2[entity.Entry, error]
	// FindByOwner lazily yields the entries owned by ownerID, newest first.
	FindByOwner(ctx context.Context, ownerID string) iter.Seq2[entity.Entry, error]
	// UpdateOwned applies p only if the entry is owned by ownerID, in a single
	// storage operation. Returns ErrNotFound or ErrNotOwner otherwise.
	UpdateOwned(ctx context.Context, id, ownerID string, p EntryPatch) (*entity.Entry, error)
	// DeleteOwned removes the entry only if it is owned by ownerID.
	DeleteOwned(ctx context.Context, id, ownerID string) error
	// AddLike atomically adds identityID to LikedBy. Adding twice is a no-op.
	AddLike(ctx context.Context, id, identityID string) (*entity.Entry, error)
	// RemoveLike atomically removes identityID from LikedBy.
	RemoveLike(ctx context.Context, id, identityID string) (*entity.Entry, error)
	Ping(ctx context.Context) error
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[entity.Entry, error]) ([]entity.Entry, error) {
	out := make([]entity.Entry, 0)
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
