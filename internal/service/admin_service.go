package service

import (
	"context"

	"artexpo-ticketing/internal/cache"
	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/queue"
	"artexpo-ticketing/internal/repository"
	apperrors "artexpo-ticketing/pkg/app_errors"
	"artexpo-ticketing/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AdminService interface {
	CreateEvent(ctx context.Context, params model.CreateEventParams) (*model.Event, error)
	UpdateEvent(ctx context.Context, eventID int, params model.UpdateEventParams) (*model.Event, error)
	// DeleteEvent removes the event and everything hanging off it. Reviews,
	// payments and bookings go first so no foreign key is left dangling.
	DeleteEvent(ctx context.Context, eventID int) error
	ListPurchases(ctx context.Context) ([]*model.Payment, error)
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

type AdminServiceImpl struct {
	tx       repository.TxManager
	events   repository.EventRepository
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	catalog  cache.CatalogCache
	feed     queue.TicketFeed
	log      *zap.Logger
}

func NewAdminService(
	tx repository.TxManager,
	events repository.EventRepository,
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	catalog cache.CatalogCache,
	feed queue.TicketFeed,
) AdminService {
	return &AdminServiceImpl{
		tx:       tx,
		events:   events,
		bookings: bookings,
		payments: payments,
		reviews:  reviews,
		users:    users,
		catalog:  catalog,
		feed:     feed,
		log:      logger.WithComponent("admin_service"),
	}
}

func (s *AdminServiceImpl) CreateEvent(ctx context.Context, params model.CreateEventParams) (*model.Event, error) {
	if !params.EventType.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	event := &model.Event{
		Name:            params.Name,
		Location:        params.Location,
		Image:           params.Image,
		Description:     params.Description,
		EventDate:       params.EventDate,
		EventType:       params.EventType,
		TicketAvailable: params.TicketAvailable,
		Price:           params.Price,
	}
	event, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	s.afterCatalogWrite(ctx, event.ID)
	return event, nil
}

func (s *AdminServiceImpl) UpdateEvent(ctx context.Context, eventID int, params model.UpdateEventParams) (*model.Event, error) {
	if params.EventType != nil && !params.EventType.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	event, err := s.events.Update(ctx, eventID, params)
	if err != nil {
		return nil, err
	}

	s.afterCatalogWrite(ctx, event.ID)
	return event, nil
}

func (s *AdminServiceImpl) DeleteEvent(ctx context.Context, eventID int) error {
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.events.FindByIDWithLock(ctx, tx, eventID); err != nil {
			return err
		}
		if err := s.reviews.DeleteByEventID(ctx, tx, eventID); err != nil {
			return err
		}
		if err := s.payments.DeleteByEventID(ctx, tx, eventID); err != nil {
			return err
		}
		if err := s.bookings.DeleteByEventID(ctx, tx, eventID); err != nil {
			return err
		}
		return s.events.Delete(ctx, tx, eventID)
	})
	if err != nil {
		return err
	}

	s.afterCatalogWrite(ctx, eventID)
	return nil
}

func (s *AdminServiceImpl) ListPurchases(ctx context.Context) ([]*model.Payment, error) {
	return s.payments.List(ctx)
}

func (s *AdminServiceImpl) Stats(ctx context.Context) (*model.DashboardStats, error) {
	monthly, err := s.payments.MonthlyTotals(ctx)
	if err != nil {
		return nil, err
	}

	eventTypes, err := s.events.CountByType(ctx)
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.users.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, err
	}

	totalPaid, err := s.payments.TotalPaidAmount(ctx)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		MonthlyRevenue: monthly,
		EventTypes:     eventTypes,
		TotalUsers:     totalUsers,
		TotalPaid:      totalPaid,
	}, nil
}

// afterCatalogWrite runs once the mutation is durable. Neither the cache nor
// the feed may fail the admin request.
func (s *AdminServiceImpl) afterCatalogWrite(ctx context.Context, eventID int) {
	if err := s.catalog.Invalidate(ctx); err != nil {
		s.log.Warn("catalog invalidation failed", zap.Int("event_id", eventID), zap.Error(err))
	}
	if err := s.feed.Publish(ctx, queue.TicketChange{EventID: eventID}); err != nil {
		s.log.Warn("failed to publish ticket change", zap.Int("event_id", eventID), zap.Error(err))
	}
}
