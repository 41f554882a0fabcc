package service

import (
	"context"
	"errors"

	"artexpo-ticketing/internal/cache"
	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/repository"
	"artexpo-ticketing/pkg/logger"

	"go.uber.org/zap"
)

type CatalogService interface {
	List(ctx context.Context, offset, limit int) ([]*model.Event, error)
	Search(ctx context.Context, params model.SearchEventsParams) ([]*model.Event, error)
	Get(ctx context.Context, eventID int) (*model.Event, error)
	// Availability prefers the cached snapshot and falls back to the ledger
	// store when the worker has not written one yet.
	Availability(ctx context.Context, eventID int) (*cache.Availability, error)
}

type CatalogServiceImpl struct {
	events  repository.EventRepository
	catalog cache.CatalogCache
	log     *zap.Logger
}

func NewCatalogService(events repository.EventRepository, catalog cache.CatalogCache) CatalogService {
	return &CatalogServiceImpl{
		events:  events,
		catalog: catalog,
		log:     logger.WithComponent("catalog_service"),
	}
}

func (s *CatalogServiceImpl) List(ctx context.Context, offset, limit int) ([]*model.Event, error) {
	key := s.catalog.ListKey(ctx, offset, limit)
	return s.readThrough(ctx, key, func() ([]*model.Event, error) {
		return s.events.List(ctx, offset, limit)
	})
}

func (s *CatalogServiceImpl) Search(ctx context.Context, params model.SearchEventsParams) ([]*model.Event, error) {
	key := s.catalog.SearchKey(ctx, params)
	return s.readThrough(ctx, key, func() ([]*model.Event, error) {
		return s.events.Search(ctx, params)
	})
}

// readThrough serves the page from the cache when present, otherwise loads it
// and caches the result. Cache failures degrade to the store, never the
// request.
func (s *CatalogServiceImpl) readThrough(ctx context.Context, key string, load func() ([]*model.Event, error)) ([]*model.Event, error) {
	events, err := s.catalog.GetEventPage(ctx, key)
	if err == nil {
		return events, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	events, err = load()
	if err != nil {
		return nil, err
	}

	if err := s.catalog.SetEventPage(ctx, key, events); err != nil {
		s.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return events, nil
}

func (s *CatalogServiceImpl) Get(ctx context.Context, eventID int) (*model.Event, error) {
	return s.events.FindByID(ctx, eventID)
}

func (s *CatalogServiceImpl) Availability(ctx context.Context, eventID int) (*cache.Availability, error) {
	snapshot, err := s.catalog.GetAvailability(ctx, eventID)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("availability cache read failed", zap.Int("event_id", eventID), zap.Error(err))
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	snapshot = &cache.Availability{
		EventID:         event.ID,
		TicketAvailable: event.TicketAvailable,
		DiscountedPrice: event.DiscountedPrice,
	}
	if err := s.catalog.RefreshAvailability(ctx, event); err != nil {
		s.log.Warn("availability cache write failed", zap.Int("event_id", eventID), zap.Error(err))
	}
	return snapshot, nil
}
