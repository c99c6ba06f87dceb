package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FetchStatus is the last catalog fetch outcome for one tenant. Admins use
// it to see why a storefront fetch failed without digging through logs.
type FetchStatus struct {
	Tenant    string    `json:"tenant"`
	FetchedAt time.Time `json:"fetched_at"`
	OK        bool      `json:"ok"`
	Products  int       `json:"products"`
	Error     string    `json:"error,omitempty"`
}

type StatusStore interface {
	Record(ctx context.Context, status FetchStatus) error
	Get(ctx context.Context, tenantCode string) (*FetchStatus, error)
}

type redisStatusStore struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStatusStore(redisClient *redis.Client) StatusStore {
	return &redisStatusStore{
		redisClient: redisClient,
		keyPrefix:   "storefront:status:",
	}
}

func (s *redisStatusStore) Record(ctx context.Context, status FetchStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to serialize fetch status for tenant %s: %w", status.Tenant, err)
	}

	key := s.keyPrefix + status.Tenant
	if err := s.redisClient.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to record fetch status for tenant %s: %w", status.Tenant, err)
	}
	return nil
}

func (s *redisStatusStore) Get(ctx context.Context, tenantCode string) (*FetchStatus, error) {
	key := s.keyPrefix + tenantCode
	val, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // No fetch recorded yet
		}
		return nil, fmt.Errorf("failed to get fetch status for tenant %s: %w", tenantCode, err)
	}

	var status FetchStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, fmt.Errorf("failed to parse fetch status for tenant %s: %w", tenantCode, err)
	}

	return &status, nil
}
