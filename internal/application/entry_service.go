package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	repo "github.com/oksasatya/go-movie-catalog/internal/domain/repository"
)

// EntryService enforces ownership on catalog entries and delegates storage
// to the repository. Identity is always passed in explicitly.
type EntryService struct {
	Repo   repo.EntryRepository
	Events EventPublisher
	Logger *logrus.Logger
}

func NewEntryService(r repo.EntryRepository, events EventPublisher, logger *logrus.Logger) *EntryService {
	return &EntryService{Repo: r, Events: events, Logger: logger}
}

// OwnerListing is the profile view: the caller's entries plus the email from
// the identity claim.
type OwnerListing struct {
	Movies []entity.Entry
	Email  string
}

// Create validates in and stores a new entry owned by owner.
func (s *EntryService) Create(ctx context.Context, in EntryPayload, owner entity.Identity) (*entity.Entry, error) {
	if owner.ID == "" {
		return nil, ErrUnauthenticated
	}
	payload, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if c := entity.Category(payload.Category); c != "" && !c.Known() && s.Logger != nil {
		s.Logger.WithField("category", c).Debug("entry with uncommon category")
	}
	created, err := s.Repo.Create(ctx, payload.entry(owner.ID))
	if err != nil {
		s.logError("create entry failed", err, logrus.Fields{"owner_id": owner.ID})
		return nil, mapRepoErr("create entry", err)
	}
	s.publish(ctx, EventEntryCreated, created.ID, owner.ID)
	return created, nil
}

func (s *EntryService) Get(ctx context.Context, id string) (*entity.Entry, error) {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("get entry", err)
	}
	return e, nil
}

// List returns every entry in the catalog, newest first.
func (s *EntryService) List(ctx context.Context) ([]entity.Entry, error) {
	entries, err := repo.Collect(s.Repo.List(ctx))
	if err != nil {
		s.logError("list entries failed", err, nil)
		return nil, mapRepoErr("list entries", err)
	}
	return entries, nil
}

// Edit replaces the mutable fields of an entry owned by owner. Missing entries
// and foreign entries are rejected before the payload is validated.
func (s *EntryService) Edit(ctx context.Context, id string, in EntryPayload, owner entity.Identity) (*entity.Entry, error) {
	if owner.ID == "" {
		return nil, ErrUnauthenticated
	}
	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr("get entry", err)
	}
	if current.OwnerID != owner.ID {
		s.logDenied("edit", id, owner.ID)
		return nil, ErrAccessDenied
	}
	payload, err := in.Validate()
	if err != nil {
		return nil, err
	}
	// the write is conditional on ownership; a concurrent delete surfaces as ErrNotFound
	updated, err := s.Repo.UpdateOwned(ctx, id, owner.ID, payload.patch())
	if err != nil {
		mapped := mapRepoErr("update entry", err)
		if errors.Is(mapped, ErrStorage) {
			s.logError("update entry failed", err, logrus.Fields{"entry_id": id, "owner_id": owner.ID})
		}
		return nil, mapped
	}
	s.publish(ctx, EventEntryUpdated, id, owner.ID)
	return updated, nil
}

// Delete permanently removes an entry owned by owner.
func (s *EntryService) Delete(ctx context.Context, id string, owner entity.Identity) error {
	if owner.ID == "" {
		return ErrUnauthenticated
	}
	if err := s.Repo.DeleteOwned(ctx, id, owner.ID); err != nil {
		mapped := mapRepoErr("delete entry", err)
		switch {
		case errors.Is(mapped, ErrAccessDenied):
			s.logDenied("delete", id, owner.ID)
		case errors.Is(mapped, ErrStorage):
			s.logError("delete entry failed", err, logrus.Fields{"entry_id": id, "owner_id": owner.ID})
		}
		return mapped
	}
	s.publish(ctx, EventEntryDeleted, id, owner.ID)
	return nil
}

// Like adds identityID to the entry's likes. Any identity may like any entry,
// its own included.
func (s *EntryService) Like(ctx context.Context, id, identityID string) (*entity.Entry, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, ErrUnauthenticated
	}
	e, err := s.Repo.AddLike(ctx, id, identityID)
	if err != nil {
		return nil, mapRepoErr("like entry", err)
	}
	s.publish(ctx, EventEntryLiked, id, identityID)
	return e, nil
}

// Unlike removes identityID from the entry's likes.
func (s *EntryService) Unlike(ctx context.Context, id, identityID string) (*entity.Entry, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, ErrUnauthenticated
	}
	e, err := s.Repo.RemoveLike(ctx, id, identityID)
	if err != nil {
		return nil, mapRepoErr("unlike entry", err)
	}
	s.publish(ctx, EventEntryUnliked, id, identityID)
	return e, nil
}

// ListByOwner returns the owner's entries. The email comes from the claim and
// is not looked up in storage.
func (s *EntryService) ListByOwner(ctx context.Context, owner entity.Identity) (*OwnerListing, error) {
	if owner.ID == "" {
		return nil, ErrUnauthenticated
	}
	entries, err := repo.Collect(s.Repo.FindByOwner(ctx, owner.ID))
	if err != nil {
		s.logError("list owner entries failed", err, logrus.Fields{"owner_id": owner.ID})
		return nil, mapRepoErr("find by owner", err)
	}
	return &OwnerListing{Movies: entries, Email: owner.Email}, nil
}

func (s *EntryService) publish(ctx context.Context, t EventType, entryID, actorID string) {
	if s.Events == nil {
		return
	}
	ev := CatalogEvent{Type: t, EntryID: entryID, ActorID: actorID, OccurredAt: time.Now().UTC()}
	if err := s.Events.Publish(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"event": t, "entry_id": entryID}).Warn("publish catalog event failed")
	}
}

func (s *EntryService) logError(msg string, err error, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}

func (s *EntryService) logDenied(action, entryID, identityID string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithFields(logrus.Fields{"action": action, "entry_id": entryID, "identity_id": identityID}).Info("access denied")
}
