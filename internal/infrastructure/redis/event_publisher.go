package redis

import (
	"context"
	"encoding/json"

	"famwish/internal/domain"

	"github.com/go-redis/redis/v8"
)

const eventChannel = "auction_events"

type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, eventChannel, string(data)).Err()
}
