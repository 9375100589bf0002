package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-movie-catalog/internal/application"
)

type fakeJSONPublisher struct {
	msgType     string
	body        any
	hadDeadline bool
	err         error
}

func (f *fakeJSONPublisher) PublishJSON(ctx context.Context, msgType string, body any) error {
	f.msgType = msgType
	f.body = body
	_, f.hadDeadline = ctx.Deadline()
	return f.err
}

func TestPublisher_Publish(t *testing.T) {
	fake := &fakeJSONPublisher{}
	p := &Publisher{pub: fake}

	ev := application.CatalogEvent{
		Type:       application.EventEntryLiked,
		EntryID:    "e1",
		ActorID:    "u3",
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, "entry.liked", fake.msgType)
	assert.Equal(t, ev, fake.body)
	assert.True(t, fake.hadDeadline)
}

func TestPublisher_PropagatesError(t *testing.T) {
	boom := errors.New("channel closed")
	p := &Publisher{pub: &fakeJSONPublisher{err: boom}}
	assert.ErrorIs(t, p.Publish(context.Background(), application.CatalogEvent{}), boom)
}
