// Package cache stores the last successfully loaded catalog snapshot per
// business so a new ordering session can still open while the catalog API
// is transiently down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/menulink/ordercore/internal/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ErrCacheMiss is returned by Get when no snapshot is cached for a business.
var ErrCacheMiss = errors.New("cache: snapshot not found")

// SnapshotStore is the port used by the catalog syncer.
type SnapshotStore interface {
	Put(ctx context.Context, snap *catalog.Snapshot) error
	Get(ctx context.Context, businessID string) (*catalog.Snapshot, error)
}

type redisStore struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
}

// NewRedisStore returns a SnapshotStore backed by the given Redis client.
// Entries expire after ttl; a zero ttl keeps them until overwritten.
func NewRedisStore(client *redis.Client, serviceName string, ttl time.Duration) SnapshotStore {
	return &redisStore{client: client, serviceName: serviceName, ttl: ttl}
}

// snapshotDoc is the serialised form. The Snapshot type itself is opaque by
// design, so the cache round-trips through its accessors.
type snapshotDoc struct {
	BusinessID string             `json:"business_id"`
	Version    string             `json:"version"`
	Categories []catalog.Category `json:"categories"`
	Items      []itemDoc          `json:"items"`
}

type itemDoc struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	BasePrice  decimal.Decimal `json:"base_price"`
	CategoryID string          `json:"category_id"`
	ImageURL   string          `json:"image_url,omitempty"`
	IsActive   bool            `json:"is_active"`
	InStock    bool            `json:"in_stock"`
	Sizes      []catalog.Size  `json:"sizes,omitempty"`
	Extras     []catalog.Extra `json:"extras,omitempty"`
}

func (r *redisStore) Put(ctx context.Context, snap *catalog.Snapshot) error {
	items := make([]itemDoc, 0, len(snap.Items()))
	for _, it := range snap.Items() {
		items = append(items, itemDoc{
			ID:         it.ID,
			Name:       it.Name,
			BasePrice:  it.BasePrice,
			CategoryID: it.CategoryID,
			ImageURL:   it.ImageURL,
			IsActive:   it.IsActive,
			InStock:    it.InStock,
			Sizes:      it.Sizes,
			Extras:     it.Extras,
		})
	}

	doc := snapshotDoc{
		BusinessID: snap.BusinessID(),
		Version:    snap.Version(),
		Categories: snap.Categories(),
		Items:      items,
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cache: marshal snapshot: %w", err)
	}

	return r.client.Set(ctx, r.key(snap.BusinessID()), b, r.ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, businessID string) (*catalog.Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key(businessID)).Result()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var doc snapshotDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("cache: unmarshal snapshot: %w", err)
	}

	items := make([]catalog.Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, catalog.Item{
			ID:         it.ID,
			Name:       it.Name,
			BasePrice:  it.BasePrice,
			CategoryID: it.CategoryID,
			ImageURL:   it.ImageURL,
			IsActive:   it.IsActive,
			InStock:    it.InStock,
			Sizes:      it.Sizes,
			Extras:     it.Extras,
		})
	}

	return catalog.NewSnapshot(doc.BusinessID, doc.Version, doc.Categories, items), nil
}

func (r *redisStore) key(businessID string) string {
	return fmt.Sprintf("%s:snapshot:%s", r.serviceName, businessID)
}
