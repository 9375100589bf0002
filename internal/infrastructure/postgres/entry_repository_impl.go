package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	"github.com/oksasatya/go-movie-catalog/internal/domain/repository"
)

const entryColumns = `id::text, owner_id, category, name, image, rating, review, description, liked_by, created_at, updated_at`

type EntryRepository struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

func scanEntry(row pgx.Row) (entity.Entry, error) {
	var e entity.Entry
	var category string
	err := row.Scan(&e.ID, &e.OwnerID, &category, &e.Name, &e.Image, &e.Rating,
		&e.Review, &e.Description, &e.LikedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return entity.Entry{}, err
	}
	e.Category = entity.Category(category)
	if e.LikedBy == nil {
		e.LikedBy = []string{}
	}
	return e, nil
}

// validID rejects ids that cannot exist in a UUID column; they are reported
// as not found instead of a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *EntryRepository) Create(ctx context.Context, e *entity.Entry) (*entity.Entry, error) {
	const op = "postgres/EntryRepository.Create"

	row := r.pool.QueryRow(ctx, `
		INSERT INTO catalog_entries (id, owner_id, category, name, image, rating, review, description, liked_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '{}')
		RETURNING `+entryColumns,
		uuid.NewString(), e.OwnerID, string(e.Category), e.Name, e.Image, e.Rating, e.Review, e.Description)

	created, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

func (r *EntryRepository) Get(ctx context.Context, id string) (*entity.Entry, error) {
	const op = "postgres/EntryRepository.Get"
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	e, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (r *EntryRepository) List(ctx context.Context) iter.Seq2[entity.Entry, error] {
	return r.query(ctx, "postgres/EntryRepository.List", `
		SELECT `+entryColumns+`
		FROM catalog_entries
		ORDER BY created_at DESC, id`)
}

func (r *EntryRepository) FindByOwner(ctx context.Context, ownerID string) iter.Seq2[entity.Entry, error] {
	return r.query(ctx, "postgres/EntryRepository.FindByOwner", `
		SELECT `+entryColumns+`
		FROM catalog_entries
		WHERE owner_id = $1
		ORDER BY created_at DESC, id`, ownerID)
}

// query streams rows to the consumer; the rows are closed when iteration ends.
func (r *EntryRepository) query(ctx context.Context, op, sql string, args ...any) iter.Seq2[entity.Entry, error] {
	return func(yield func(entity.Entry, error) bool) {
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			yield(entity.Entry{}, fmt.Errorf("%s: %w", op, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(entity.Entry{}, fmt.Errorf("%s: scan: %w", op, err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(entity.Entry{}, fmt.Errorf("%s: %w", op, err))
		}
	}
}

func (r *EntryRepository) UpdateOwned(ctx context.Context, id, ownerID string, p repository.EntryPatch) (*entity.Entry, error) {
	const op = "postgres/EntryRepository.UpdateOwned"
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE catalog_entries
		SET category = $3, name = $4, image = $5, rating = $6, review = $7, description = $8, updated_at = $9
		WHERE id = $1 AND owner_id = $2
		RETURNING `+entryColumns,
		id, ownerID, string(p.Category), p.Name, p.Image, p.Rating, p.Review, p.Description, time.Now().UTC())

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMiss(ctx, op, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (r *EntryRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	const op = "postgres/EntryRepository.DeleteOwned"
	if !validID(id) {
		return repository.ErrNotFound
	}

	res, err := r.pool.Exec(ctx, `DELETE FROM catalog_entries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.RowsAffected() == 0 {
		return r.classifyMiss(ctx, op, id)
	}
	return nil
}

// classifyMiss explains why an owner-conditional write matched no row.
func (r *EntryRepository) classifyMiss(ctx context.Context, op, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM catalog_entries WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("%s: classify: %w", op, err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrNotOwner
}

func (r *EntryRepository) AddLike(ctx context.Context, id, identityID string) (*entity.Entry, error) {
	const op = "postgres/EntryRepository.AddLike"
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	// single statement: the row lock makes the membership test and append atomic
	row := r.pool.QueryRow(ctx, `
		UPDATE catalog_entries
		SET liked_by = CASE WHEN $2::text = ANY(liked_by) THEN liked_by ELSE array_append(liked_by, $2::text) END
		WHERE id = $1
		RETURNING `+entryColumns, id, identityID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (r *EntryRepository) RemoveLike(ctx context.Context, id, identityID string) (*entity.Entry, error) {
	const op = "postgres/EntryRepository.RemoveLike"
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE catalog_entries
		SET liked_by = array_remove(liked_by, $2::text)
		WHERE id = $1
		RETURNING `+entryColumns, id, identityID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (r *EntryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var _ repository.EntryRepository = (*EntryRepository)(nil)
