package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"artexpo-ticketing/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the requested key is absent; callers fall
// back to the ledger store.
var ErrCacheMiss = errors.New("cache miss")

const catalogTTL = 30 * time.Second

// Availability is the per-event snapshot the worker keeps warm so the
// availability endpoint can answer without touching the ledger store.
type Availability struct {
	EventID         int      `json:"event_id"`
	TicketAvailable int      `json:"ticket_available"`
	DiscountedPrice *float64 `json:"discounted_price,omitempty"`
}

type CatalogCache interface {
	// Catalog pages: keys carry a version so one bump invalidates every page.
	ListKey(ctx context.Context, offset, limit int) string
	SearchKey(ctx context.Context, params model.SearchEventsParams) string
	GetEventPage(ctx context.Context, key string) ([]*model.Event, error)
	SetEventPage(ctx context.Context, key string, events []*model.Event) error
	Invalidate(ctx context.Context) error

	// Availability snapshot, refreshed by the worker after ledger writes.
	RefreshAvailability(ctx context.Context, event *model.Event) error
	GetAvailability(ctx context.Context, eventID int) (*Availability, error)
}

type CatalogCacheImpl struct {
	client *redis.Client
}

func NewCatalogCache(client *redis.Client) CatalogCache {
	return &CatalogCacheImpl{
		client: client,
	}
}

const versionKey = "catalog:ver"

func (c *CatalogCacheImpl) version(ctx context.Context) int64 {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

func (c *CatalogCacheImpl) ListKey(ctx context.Context, offset, limit int) string {
	return fmt.Sprintf("catalog:v%d:list:%d:%d", c.version(ctx), offset, limit)
}

func (c *CatalogCacheImpl) SearchKey(ctx context.Context, params model.SearchEventsParams) string {
	eventType := ""
	if params.Type != nil {
		eventType = string(*params.Type)
	}
	return fmt.Sprintf("catalog:v%d:search:%s:%s:%d:%d",
		c.version(ctx), params.Term, eventType, params.Offset, params.Limit)
}

func (c *CatalogCacheImpl) GetEventPage(ctx context.Context, key string) ([]*model.Event, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var events []*model.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *CatalogCacheImpl) SetEventPage(ctx context.Context, key string, events []*model.Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, catalogTTL).Err()
}

// Invalidate bumps the catalog version; stale pages age out via TTL.
func (c *CatalogCacheImpl) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey).Err()
}

func availabilityKey(eventID int) string {
	return fmt.Sprintf("event:%d:availability", eventID)
}

func (c *CatalogCacheImpl) RefreshAvailability(ctx context.Context, event *model.Event) error {
	snapshot := Availability{
		EventID:         event.ID,
		TicketAvailable: event.TicketAvailable,
		DiscountedPrice: event.DiscountedPrice,
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, availabilityKey(event.ID), raw, 0).Err()
}

func (c *CatalogCacheImpl) GetAvailability(ctx context.Context, eventID int) (*Availability, error) {
	raw, err := c.client.Get(ctx, availabilityKey(eventID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var snapshot Availability
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
