package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feriaverde/catalog-backend/pkg/db/models"
	"github.com/feriaverde/catalog-backend/pkg/logger"
	"github.com/feriaverde/catalog-backend/pkg/redis"
)

// SnapshotCache keeps raw product+variant snapshots in Redis keyed by slug.
// Snapshots store persisted state only, never computed prices, so discount
// windows stay correct no matter when a cached product is served.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewSnapshotCache wraps the shared redis client for storefront reads.
func NewSnapshotCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl, log: log}
}

// GetBySlug returns the cached snapshot, or nil on a miss or any cache error.
func (c *SnapshotCache) GetBySlug(ctx context.Context, slug string) *models.Product {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, c.client.SnapshotKeyBySlug(slug))
	if err != nil {
		if !redis.IsMiss(err) && c.log != nil {
			c.log.Warn(ctx, "catalog snapshot read failed: "+err.Error())
		}
		return nil
	}
	var snapshot models.Product
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		if c.log != nil {
			c.log.Warn(ctx, "catalog snapshot decode failed: "+err.Error())
		}
		return nil
	}
	return &snapshot
}

// Store writes the snapshot with the configured TTL. Failures are logged and
// swallowed; the storefront can always fall through to the database.
func (c *SnapshotCache) Store(ctx context.Context, snapshot *models.Product) {
	if c == nil || c.client == nil || snapshot == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.client.SnapshotKeyBySlug(snapshot.Slug), string(payload), c.ttl); err != nil && c.log != nil {
		c.log.Warn(ctx, "catalog snapshot write failed: "+err.Error())
	}
}

// InvalidateProduct drops the cached snapshot after a mutation.
func (c *SnapshotCache) InvalidateProduct(ctx context.Context, productID int64, slug string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx,
		c.client.SnapshotKeyBySlug(slug),
		c.client.SnapshotKeyByID(productID),
	)
}
