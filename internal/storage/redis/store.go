// Package redis persists asset aggregates in Redis as JSON values, one key
// per deployed asset instance. Record collections stay in PostgreSQL; Redis
// only carries the hot singleton the transition handlers load on every call.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rwa-ledger/pkg/sentinel"
)

const keyPrefix = "rwa:aggregate:"

// AggregateStore is a lifecycle.AggregateStore backed by a single Redis key.
type AggregateStore[A any] struct {
	client *redis.Client
	key    string
}

func NewAggregateStore[A any](client *redis.Client, asset string) *AggregateStore[A] {
	return &AggregateStore[A]{client: client, key: keyPrefix + asset}
}

func (s *AggregateStore[A]) Load(ctx context.Context) (A, error) {
	var aggregate A
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return aggregate, sentinel.ErrNotInitialized
		}
		return aggregate, fmt.Errorf("load aggregate %s: %w", s.key, err)
	}
	if err := json.Unmarshal(payload, &aggregate); err != nil {
		return aggregate, fmt.Errorf("unmarshal aggregate %s: %w", s.key, err)
	}
	return aggregate, nil
}

func (s *AggregateStore[A]) Save(ctx context.Context, aggregate A) error {
	payload, err := json.Marshal(aggregate)
	if err != nil {
		return fmt.Errorf("marshal aggregate %s: %w", s.key, err)
	}
	// Aggregates live for the lifetime of the instance; no TTL.
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("save aggregate %s: %w", s.key, err)
	}
	return nil
}
