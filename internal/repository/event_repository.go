package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `event_id, event_name, location, image, description, event_date,
		event_type, ticket_available, price, discounted_price, created_at, updated_at`

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context, offset, limit int) ([]*model.Event, error)
	Search(ctx context.Context, params model.SearchEventsParams) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)
	CountByType(ctx context.Context) ([]model.EventTypeCount, error)

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Event, error)
	DecrementTickets(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	IncrementTickets(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	SetDiscountedPrice(ctx context.Context, tx pgx.Tx, id int, price float64) error
	Delete(ctx context.Context, tx pgx.Tx, id int) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func scanEvent(row pgx.Row, event *model.Event) error {
	return row.Scan(
		&event.ID,
		&event.Name,
		&event.Location,
		&event.Image,
		&event.Description,
		&event.EventDate,
		&event.EventType,
		&event.TicketAvailable,
		&event.Price,
		&event.DiscountedPrice,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := fmt.Sprintf(`
		INSERT INTO events (event_name, location, image, description, event_date,
			event_type, ticket_available, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, eventColumns)

	row := r.pool.QueryRow(ctx, query,
		event.Name, event.Location, event.Image, event.Description,
		event.EventDate, event.EventType, event.TicketAvailable, event.Price,
	)
	if err := scanEvent(row, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context, offset, limit int) ([]*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		ORDER BY event_date
		OFFSET $1 LIMIT $2
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *EventRepositoryImpl) Search(ctx context.Context, params model.SearchEventsParams) ([]*model.Event, error) {
	conditions := []string{"event_name ILIKE $1"}
	args := []interface{}{"%" + params.Term + "%"}
	argPos := 2

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", argPos))
		args = append(args, *params.Type)
		argPos++
	}

	args = append(args, params.Offset, params.Limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE %s
		ORDER BY event_date
		OFFSET $%d LIMIT $%d
	`, eventColumns, strings.Join(conditions, " AND "), argPos, argPos+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	events := make([]*model.Event, 0)
	for rows.Next() {
		var event model.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE event_id = $1
	`, eventColumns)

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query, id), &event)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE event_id = $1
		FOR UPDATE
	`, eventColumns)

	var event model.Event
	err := scanEvent(tx.QueryRow(ctx, query, id), &event)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Name != nil {
		addSet("event_name", *params.Name)
	}
	if params.Location != nil {
		addSet("location", *params.Location)
	}
	if params.Image != nil {
		addSet("image", *params.Image)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.EventDate != nil {
		addSet("event_date", *params.EventDate)
	}
	if params.EventType != nil {
		if !params.EventType.IsValid() {
			return nil, apperrors.ErrInvalidInput
		}
		addSet("event_type", *params.EventType)
	}
	if params.TicketAvailable != nil {
		addSet("ticket_available", *params.TicketAvailable)
	}
	if params.Price != nil {
		addSet("price", *params.Price)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE event_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, eventColumns)

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query, args...), &event)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) DecrementTickets(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE events
		SET ticket_available = ticket_available - $1, updated_at = $2
		WHERE event_id = $3 AND ticket_available >= $1
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNoTicketsAvailable
	}

	return nil
}

func (r *EventRepositoryImpl) IncrementTickets(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE events
		SET ticket_available = ticket_available + $1, updated_at = $2
		WHERE event_id = $3
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

func (r *EventRepositoryImpl) SetDiscountedPrice(ctx context.Context, tx pgx.Tx, id int, price float64) error {
	query := `
		UPDATE events
		SET discounted_price = $1, updated_at = $2
		WHERE event_id = $3
	`

	result, err := tx.Exec(ctx, query, price, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

func (r *EventRepositoryImpl) CountByType(ctx context.Context) ([]model.EventTypeCount, error) {
	query := `
		SELECT event_type, COUNT(*)
		FROM events
		GROUP BY event_type
		ORDER BY event_type
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]model.EventTypeCount, 0)
	for rows.Next() {
		var c model.EventTypeCount
		if err := rows.Scan(&c.EventType, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	result, err := tx.Exec(ctx, `DELETE FROM events WHERE event_id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}
