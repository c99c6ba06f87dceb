package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	TypeCatalogFetched     = "CatalogFetched"
	TypeCatalogFetchFailed = "CatalogFetchFailed"
)

// Event is one entry of the admin activity feed. Consumers read the stream
// out of process; this side only appends.
type Event struct {
	Type     string    `json:"type"`
	Tenant   string    `json:"tenant"`
	At       time.Time `json:"at"`
	Products int       `json:"products,omitempty"`
	Error    string    `json:"error,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) (string, error) // Returns message ID
}

type redisPublisher struct {
	redisClient *redis.Client
	stream      string
}

func NewRedisPublisher(redisClient *redis.Client) Publisher {
	return &redisPublisher{
		redisClient: redisClient,
		stream:      "storefront:stream:catalog",
	}
}

func (p *redisPublisher) Publish(ctx context.Context, event Event) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to serialize event: %w", err)
	}

	messageID, err := p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": event.Type,
			"event_data": string(payload),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("failed to publish event to stream %s: %w", p.stream, err)
	}

	log.Debugf("Published %s event for tenant %s with message ID: %s", event.Type, event.Tenant, messageID)
	return messageID, nil
}
