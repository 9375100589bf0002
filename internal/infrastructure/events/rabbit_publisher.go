package events

import (
	"context"
	"time"

	"github.com/oksasatya/go-movie-catalog/internal/application"
	"github.com/oksasatya/go-movie-catalog/pkg/helpers"
)

const publishTimeout = 2 * time.Second

// jsonPublisher is satisfied by helpers.RabbitPublisher.
type jsonPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// Publisher sends catalog events to the message broker.
type Publisher struct {
	pub jsonPublisher
}

func NewPublisher(pub *helpers.RabbitPublisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) Publish(ctx context.Context, ev application.CatalogEvent) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.pub.PublishJSON(ctx, string(ev.Type), ev)
}

var _ application.EventPublisher = (*Publisher)(nil)
