// Package repositorytest holds the behaviour every EntryRepository backend
// must share. Backend test packages call Run with their own constructor.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	"github.com/oksasatya/go-movie-catalog/internal/domain/repository"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) repository.EntryRepository

func sample(owner, name string) *entity.Entry {
	return &entity.Entry{
		OwnerID:     owner,
		Category:    entity.CategoryMovie,
		Name:        name,
		Image:       "https://img.example.com/" + name + ".jpg",
		Rating:      4.5,
		Review:      "Great visuals and pacing.",
		Description: "Sci-fi epic on a desert planet.",
	}
}

func mustCreate(t *testing.T, r repository.EntryRepository, owner, name string) *entity.Entry {
	t.Helper()
	e, err := r.Create(context.Background(), sample(owner, name))
	require.NoError(t, err)
	return e
}

// Run executes the shared contract against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Create assigns identity and empty likes", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		created, err := r.Create(ctx, sample("u1", "Dune"))
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, "u1", created.OwnerID)
		assert.Equal(t, "Dune", created.Name)
		assert.Equal(t, 4.5, created.Rating)
		assert.Empty(t, created.LikedBy)
		assert.NotNil(t, created.LikedBy)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, created.Image, got.Image)
		assert.Equal(t, entity.CategoryMovie, got.Category)
	})

	t.Run("Get missing or malformed id is not found", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Get(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = r.Get(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("List and FindByOwner are newest first", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		owner := "owner-" + uuid.NewString()

		first := mustCreate(t, r, owner, "First")
		time.Sleep(5 * time.Millisecond)
		other := mustCreate(t, r, "someone-else", "Other")
		time.Sleep(5 * time.Millisecond)
		last := mustCreate(t, r, owner, "Last")

		mine, err := repository.Collect(r.FindByOwner(ctx, owner))
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, last.ID, mine[0].ID)
		assert.Equal(t, first.ID, mine[1].ID)

		all, err := repository.Collect(r.List(ctx))
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{last.ID, other.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

		none, err := repository.Collect(r.FindByOwner(ctx, "nobody"))
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("iteration can stop early", func(t *testing.T) {
		r := newRepo(t)
		for i := 0; i < 3; i++ {
			mustCreate(t, r, "u1", fmt.Sprintf("Entry %d", i))
		}
		seen := 0
		for _, err := range r.List(context.Background()) {
			require.NoError(t, err)
			seen++
			break
		}
		assert.Equal(t, 1, seen)
	})

	t.Run("UpdateOwned by owner replaces mutable fields", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		e := mustCreate(t, r, "u1", "Dune")
		_, err := r.AddLike(ctx, e.ID, "u2")
		require.NoError(t, err)

		updated, err := r.UpdateOwned(ctx, e.ID, "u1", repository.EntryPatch{
			Category:    entity.CategorySeries,
			Name:        "Dune: Part Two",
			Image:       "http://img.example.com/dune2.jpg",
			Rating:      5,
			Review:      "Even better than the first.",
			Description: "The story continues on Arrakis.",
		})
		require.NoError(t, err)
		assert.Equal(t, "Dune: Part Two", updated.Name)
		assert.Equal(t, entity.CategorySeries, updated.Category)
		assert.Equal(t, 5.0, updated.Rating)
		assert.Equal(t, "u1", updated.OwnerID)
		assert.Equal(t, []string{"u2"}, updated.LikedBy)
		assert.False(t, updated.UpdatedAt.Before(e.UpdatedAt))
	})

	t.Run("UpdateOwned classifies misses", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		e := mustCreate(t, r, "u1", "Dune")

		_, err := r.UpdateOwned(ctx, e.ID, "u2", repository.EntryPatch{Name: "Hijacked"})
		assert.ErrorIs(t, err, repository.ErrNotOwner)

		got, err := r.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Name)

		_, err = r.UpdateOwned(ctx, uuid.NewString(), "u1", repository.EntryPatch{Name: "Ghost"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("DeleteOwned only removes own entries", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		e := mustCreate(t, r, "u1", "Dune")

		assert.ErrorIs(t, r.DeleteOwned(ctx, e.ID, "u2"), repository.ErrNotOwner)
		_, err := r.Get(ctx, e.ID)
		require.NoError(t, err)

		require.NoError(t, r.DeleteOwned(ctx, e.ID, "u1"))
		_, err = r.Get(ctx, e.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.ErrorIs(t, r.DeleteOwned(ctx, e.ID, "u1"), repository.ErrNotFound)
		assert.ErrorIs(t, r.DeleteOwned(ctx, "not-a-uuid", "u1"), repository.ErrNotFound)
	})

	t.Run("likes are a set", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		e := mustCreate(t, r, "u1", "Dune")

		liked, err := r.AddLike(ctx, e.ID, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"u2"}, liked.LikedBy)

		liked, err = r.AddLike(ctx, e.ID, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"u2"}, liked.LikedBy)

		liked, err = r.AddLike(ctx, e.ID, "u1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"u1", "u2"}, liked.LikedBy)

		unliked, err := r.RemoveLike(ctx, e.ID, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, unliked.LikedBy)

		unliked, err = r.RemoveLike(ctx, e.ID, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, unliked.LikedBy)

		_, err = r.AddLike(ctx, uuid.NewString(), "u2")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = r.RemoveLike(ctx, uuid.NewString(), "u2")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("concurrent likes are not lost", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		e := mustCreate(t, r, "u1", "Dune")

		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				// each identity likes twice
				_, _ = r.AddLike(ctx, e.ID, fmt.Sprintf("user-%d", i))
				_, _ = r.AddLike(ctx, e.ID, fmt.Sprintf("user-%d", i))
			}(i)
		}
		wg.Wait()

		got, err := r.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Len(t, got.LikedBy, n)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(context.Background()))
	})
}
