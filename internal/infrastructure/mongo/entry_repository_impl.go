package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	"github.com/oksasatya/go-movie-catalog/internal/domain/repository"
)

// entryDoc is the stored shape of an entry; one document per entry keyed by id.
type entryDoc struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Category    string    `bson:"category"`
	Name        string    `bson:"name"`
	Image       string    `bson:"image"`
	Rating      float64   `bson:"rating"`
	Review      string    `bson:"review"`
	Description string    `bson:"description"`
	LikedBy     []string  `bson:"liked_by"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d entryDoc) toEntity() entity.Entry {
	likedBy := d.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	return entity.Entry{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Category:    entity.Category(d.Category),
		Name:        d.Name,
		Image:       d.Image,
		Rating:      d.Rating,
		Review:      d.Review,
		Description: d.Description,
		LikedBy:     likedBy,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// MongoDB DateTime stores milliseconds.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var afterUpdate = options.FindOneAndUpdate().SetReturnDocument(options.After)

func (m *Mongo) Create(ctx context.Context, e *entity.Entry) (*entity.Entry, error) {
	const op = "mongo/EntryRepository.Create"

	now := toMS(time.Now())
	doc := entryDoc{
		ID:          uuid.NewString(),
		OwnerID:     e.OwnerID,
		Category:    string(e.Category),
		Name:        e.Name,
		Image:       e.Image,
		Rating:      e.Rating,
		Review:      e.Review,
		Description: e.Description,
		LikedBy:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := m.entries.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}
	out := doc.toEntity()
	return &out, nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*entity.Entry, error) {
	const op = "mongo/EntryRepository.Get"
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	var doc entryDoc
	if err := m.entries.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := doc.toEntity()
	return &out, nil
}

func (m *Mongo) List(ctx context.Context) iter.Seq2[entity.Entry, error] {
	return m.find(ctx, "mongo/EntryRepository.List", bson.D{})
}

func (m *Mongo) FindByOwner(ctx context.Context, ownerID string) iter.Seq2[entity.Entry, error] {
	return m.find(ctx, "mongo/EntryRepository.FindByOwner", bson.D{{Key: "owner_id", Value: ownerID}})
}

// find streams documents from the cursor; the cursor is closed when iteration ends.
func (m *Mongo) find(ctx context.Context, op string, filter bson.D) iter.Seq2[entity.Entry, error] {
	return func(yield func(entity.Entry, error) bool) {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
		cur, err := m.entries.Find(ctx, filter, opts)
		if err != nil {
			yield(entity.Entry{}, fmt.Errorf("%s: find: %w", op, err))
			return
		}
		defer func() { _ = cur.Close(context.Background()) }()

		for cur.Next(ctx) {
			var doc entryDoc
			if err := cur.Decode(&doc); err != nil {
				yield(entity.Entry{}, fmt.Errorf("%s: decode: %w", op, err))
				return
			}
			if !yield(doc.toEntity(), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(entity.Entry{}, fmt.Errorf("%s: cursor: %w", op, err))
		}
	}
}

func (m *Mongo) UpdateOwned(ctx context.Context, id, ownerID string, p repository.EntryPatch) (*entity.Entry, error) {
	const op = "mongo/EntryRepository.UpdateOwned"
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	filter := bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "category", Value: string(p.Category)},
		{Key: "name", Value: p.Name},
		{Key: "image", Value: p.Image},
		{Key: "rating", Value: p.Rating},
		{Key: "review", Value: p.Review},
		{Key: "description", Value: p.Description},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	var doc entryDoc
	if err := m.entries.FindOneAndUpdate(ctx, filter, update, afterUpdate).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, m.classifyMiss(ctx, op, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := doc.toEntity()
	return &out, nil
}

func (m *Mongo) DeleteOwned(ctx context.Context, id, ownerID string) error {
	const op = "mongo/EntryRepository.DeleteOwned"
	if !validID(id) {
		return repository.ErrNotFound
	}

	res, err := m.entries.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return m.classifyMiss(ctx, op, id)
	}
	return nil
}

// classifyMiss explains why an owner-filtered write matched no document.
func (m *Mongo) classifyMiss(ctx context.Context, op, id string) error {
	n, err := m.entries.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("%s: classify: %w", op, err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrNotOwner
}

func (m *Mongo) AddLike(ctx context.Context, id, identityID string) (*entity.Entry, error) {
	return m.updateLikes(ctx, "mongo/EntryRepository.AddLike", id, "$addToSet", identityID)
}

func (m *Mongo) RemoveLike(ctx context.Context, id, identityID string) (*entity.Entry, error) {
	return m.updateLikes(ctx, "mongo/EntryRepository.RemoveLike", id, "$pull", identityID)
}

// updateLikes applies a server-side set operator to liked_by.
func (m *Mongo) updateLikes(ctx context.Context, op, id, operator, identityID string) (*entity.Entry, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}

	update := bson.D{{Key: operator, Value: bson.D{{Key: "liked_by", Value: identityID}}}}
	var doc entryDoc
	if err := m.entries.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, afterUpdate).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := doc.toEntity()
	return &out, nil
}

var _ repository.EntryRepository = (*Mongo)(nil)
