package repository

import (
	"context"

	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository interface {
	List(ctx context.Context, offset, limit int) ([]*model.Review, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, review *model.Review) (*model.Review, error)
	Exists(ctx context.Context, tx pgx.Tx, paymentID, userID int) (bool, error)
	DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error
}

type ReviewRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &ReviewRepositoryImpl{
		pool: pool,
	}
}

func (r *ReviewRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, review *model.Review) (*model.Review, error) {
	query := `
		INSERT INTO reviews (user_id, event_id, payment_id, review, rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING review_id, user_id, event_id, payment_id, review, rating, created_at
	`

	err := tx.QueryRow(ctx, query,
		review.UserID, review.EventID, review.PaymentID, review.Review, review.Rating,
	).Scan(
		&review.ID,
		&review.UserID,
		&review.EventID,
		&review.PaymentID,
		&review.Review,
		&review.Rating,
		&review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrReviewAlreadyExists
		}
		return nil, err
	}

	return review, nil
}

func (r *ReviewRepositoryImpl) Exists(ctx context.Context, tx pgx.Tx, paymentID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reviews WHERE payment_id = $1 AND user_id = $2
		)
	`

	var exists bool
	err := tx.QueryRow(ctx, query, paymentID, userID).Scan(&exists)
	return exists, err
}

// List returns the paginated review feed with the reviewer's username and the
// event name joined in.
func (r *ReviewRepositoryImpl) List(ctx context.Context, offset, limit int) ([]*model.Review, error) {
	query := `
		SELECT r.review_id, r.user_id, r.event_id, r.payment_id, r.review, r.rating, r.created_at,
		       u.username, e.event_name
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id
		JOIN events e ON e.event_id = r.event_id
		ORDER BY r.created_at DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*model.Review, 0)
	for rows.Next() {
		var review model.Review
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.EventID,
			&review.PaymentID,
			&review.Review,
			&review.Rating,
			&review.CreatedAt,
			&review.Username,
			&review.EventName,
		)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}

	return reviews, rows.Err()
}

func (r *ReviewRepositoryImpl) DeleteByEventID(ctx context.Context, tx pgx.Tx, eventID int) error {
	_, err := tx.Exec(ctx, `DELETE FROM reviews WHERE event_id = $1`, eventID)
	return err
}
