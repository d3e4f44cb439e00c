// Package redis stores flow definitions as JSON values under a keyspace
// prefix.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/persistence"
)

const keyPrefix = "flowsync:flow:"

type Store struct {
	client *goredis.Client
}

// NewStore connects to redis using a redis:// URL.
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	options, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(options)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Flows(ctx context.Context) ([]*models.FlowDefinition, error) {
	flows := make([]*models.FlowDefinition, 0)

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}

			return nil, fmt.Errorf("get %s: %w", iter.Val(), err)
		}

		var flow models.FlowDefinition
		if err := json.Unmarshal(raw, &flow); err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Val(), err)
		}

		flows = append(flows, &flow)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan flows: %w", err)
	}

	return flows, nil
}

func (s *Store) FlowByID(ctx context.Context, id string) (*models.FlowDefinition, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.ErrFlowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get flow %s: %w", id, err)
	}

	var flow models.FlowDefinition

	err = json.Unmarshal(raw, &flow)
	if err != nil {
		return nil, fmt.Errorf("decode flow %s: %w", id, err)
	}

	return &flow, nil
}

func (s *Store) SaveFlow(ctx context.Context, flow *models.FlowDefinition) error {
	raw, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("encode flow %s: %w", flow.ID, err)
	}

	return s.client.Set(ctx, keyPrefix+flow.ID, raw, 0).Err()
}

func (s *Store) DeleteFlow(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete flow %s: %w", id, err)
	}

	if deleted == 0 {
		return persistence.ErrFlowNotFound
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
