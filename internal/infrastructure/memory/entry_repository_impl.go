package memory

import (
	"context"
	"iter"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	"github.com/oksasatya/go-movie-catalog/internal/domain/repository"
)

// EntryRepository keeps entries in process memory. Every operation holds the
// lock for its whole read-modify-write, which gives the same per-entry
// atomicity the database backends provide.
type EntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*entity.Entry
	now     func() time.Time
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{entries: make(map[string]*entity.Entry), now: time.Now}
}

func clone(e *entity.Entry) *entity.Entry {
	c := *e
	c.LikedBy = slices.Clone(e.LikedBy)
	if c.LikedBy == nil {
		c.LikedBy = []string{}
	}
	return &c
}

func (r *EntryRepository) Create(_ context.Context, e *entity.Entry) (*entity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(e)
	stored.ID = uuid.NewString()
	stored.LikedBy = []string{}
	now := r.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.entries[stored.ID] = stored
	return clone(stored), nil
}

func (r *EntryRepository) Get(_ context.Context, id string) (*entity.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(e), nil
}

func (r *EntryRepository) List(ctx context.Context) iter.Seq2[entity.Entry, error] {
	return r.scan(ctx, func(*entity.Entry) bool { return true })
}

func (r *EntryRepository) FindByOwner(ctx context.Context, ownerID string) iter.Seq2[entity.Entry, error] {
	return r.scan(ctx, func(e *entity.Entry) bool { return e.OwnerID == ownerID })
}

// scan snapshots the matching entries, so the order is stable for one call.
func (r *EntryRepository) scan(ctx context.Context, match func(*entity.Entry) bool) iter.Seq2[entity.Entry, error] {
	return func(yield func(entity.Entry, error) bool) {
		r.mu.RLock()
		snapshot := make([]*entity.Entry, 0, len(r.entries))
		for _, e := range r.entries {
			if match(e) {
				snapshot = append(snapshot, clone(e))
			}
		}
		r.mu.RUnlock()

		sort.Slice(snapshot, func(i, j int) bool {
			if !snapshot[i].CreatedAt.Equal(snapshot[j].CreatedAt) {
				return snapshot[i].CreatedAt.After(snapshot[j].CreatedAt)
			}
			return snapshot[i].ID < snapshot[j].ID
		})

		for _, e := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(entity.Entry{}, err)
				return
			}
			if !yield(*e, nil) {
				return
			}
		}
	}
}

func (r *EntryRepository) UpdateOwned(_ context.Context, id, ownerID string, p repository.EntryPatch) (*entity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if e.OwnerID != ownerID {
		return nil, repository.ErrNotOwner
	}
	e.Category = p.Category
	e.Name = p.Name
	e.Image = p.Image
	e.Rating = p.Rating
	e.Review = p.Review
	e.Description = p.Description
	e.UpdatedAt = r.now().UTC()
	return clone(e), nil
}

func (r *EntryRepository) DeleteOwned(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.OwnerID != ownerID {
		return repository.ErrNotOwner
	}
	delete(r.entries, id)
	return nil
}

func (r *EntryRepository) AddLike(_ context.Context, id, identityID string) (*entity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !slices.Contains(e.LikedBy, identityID) {
		e.LikedBy = append(e.LikedBy, identityID)
	}
	return clone(e), nil
}

func (r *EntryRepository) RemoveLike(_ context.Context, id, identityID string) (*entity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if i := slices.Index(e.LikedBy, identityID); i >= 0 {
		e.LikedBy = slices.Delete(e.LikedBy, i, i+1)
	}
	return clone(e), nil
}

func (r *EntryRepository) Ping(context.Context) error { return nil }

var _ repository.EntryRepository = (*EntryRepository)(nil)
