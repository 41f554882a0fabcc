package worker

import (
	"context"

	"artexpo-ticketing/internal/cache"
	"artexpo-ticketing/internal/queue"
	"artexpo-ticketing/internal/repository"
	"artexpo-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// AvailabilityWorker consumes the ticket feed and keeps the Redis
// availability snapshot in step with the ledger store.
type AvailabilityWorker interface {
	Start(ctx context.Context) error
}

type AvailabilityWorkerImpl struct {
	events repository.EventRepository
	cache  cache.CatalogCache
	feed   queue.TicketFeed
}

func NewAvailabilityWorker(events repository.EventRepository, catalogCache cache.CatalogCache, feed queue.TicketFeed) AvailabilityWorker {
	return &AvailabilityWorkerImpl{
		events: events,
		cache:  catalogCache,
		feed:   feed,
	}
}

func (w *AvailabilityWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.feed.Subscribe(ctx)
	if err != nil {
		return err
	}

	log := logger.WithComponent("availability_worker")

	go func() {
		for msg := range msgs {
			event, err := w.events.FindByID(ctx, msg.Data.EventID)
			if err != nil {
				// The event may have been deleted since the notice was
				// published; nothing to refresh.
				log.Warn("skipping availability refresh", zap.Int("event_id", msg.Data.EventID), zap.Error(err))
				msg.Ack()
				continue
			}

			if err := w.cache.RefreshAvailability(ctx, event); err != nil {
				log.Error("failed to refresh availability", zap.Int("event_id", event.ID), zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
