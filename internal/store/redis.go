package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// snapshotKeyPrefix namespaces the per-category snapshot blobs.
const snapshotKeyPrefix = "shelfsight:snapshots:"

// RedisProvider loads a category's snapshot series from a Redis JSON blob at
// shelfsight:snapshots:<categoryID>. The ETL writes those blobs; this module
// only reads them.
type RedisProvider struct {
	client redis.Cmdable
}

// NewRedisProvider creates a provider over an existing client.
func NewRedisProvider(client redis.Cmdable) *RedisProvider {
	return &RedisProvider{client: client}
}

// NewRedisClient opens a client with default options against addr.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Snapshots fetches and chronologically sorts the category's series.
func (p *RedisProvider) Snapshots(ctx context.Context, categoryID string) ([]snapshot.Snapshot, error) {
	data, err := p.client.Get(ctx, snapshotKeyPrefix+categoryID).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", snapshot.ErrCategoryNotFound, categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshots from redis: %w", err)
	}

	var snaps []snapshot.Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot blob for %s: %w", categoryID, err)
	}
	snapshot.Sort(snaps)
	log.Debug().Str("category", categoryID).Int("snapshots", len(snaps)).Msg("Loaded snapshot series from redis")
	return snaps, nil
}
