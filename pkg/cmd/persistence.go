// Package cmd holds shared wiring helpers for the binaries.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/kmare/flowsync/pkg/persistence"
	"github.com/kmare/flowsync/pkg/persistence/file"
	"github.com/kmare/flowsync/pkg/persistence/postgres"
	"github.com/kmare/flowsync/pkg/persistence/redis"
)

// NewFlowStore selects a store implementation from the database URL
// scheme. Unknown schemes fall back to the file store.
func NewFlowStore(ctx context.Context, databaseURL string) (persistence.FlowStore, error) {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		scheme = "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		store, err := postgres.NewStore(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres flow store: %w", err)
		}

		return store, nil
	case "redis", "rediss":
		store, err := redis.NewStore(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("redis flow store: %w", err)
		}

		return store, nil
	default:
		return file.NewStore(databaseURL), nil
	}
}
