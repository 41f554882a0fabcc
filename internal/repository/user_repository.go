package repository

import (
	"context"
	"time"

	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, username, email, password, role, points, refresh_token,
		created_at, updated_at`

type UserRepository interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id int, token *string) error
	CountByRole(ctx context.Context, role model.Role) (int, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, user *model.User) (*model.User, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.User, error)
	SetPoints(ctx context.Context, tx pgx.Tx, id int, points float64) error
	IncrementPoints(ctx context.Context, tx pgx.Tx, id int, delta float64) error
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

func scanUser(row pgx.Row, user *model.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.Points,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

func (r *UserRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (username, email, password, role, points)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	err := scanUser(tx.QueryRow(ctx, query,
		user.Username, user.Email, user.Password, user.Role, user.Points,
	), user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrEmailAlreadyRegistered
		}
		return nil, err
	}

	return user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1
	`

	var user model.User
	err := scanUser(r.pool.QueryRow(ctx, query, id), &user)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1
		FOR UPDATE
	`

	var user model.User
	err := scanUser(tx.QueryRow(ctx, query, id), &user)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := scanUser(r.pool.QueryRow(ctx, query, email), &user)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetPoints overwrites the balance. Only the booking path uses this, and only
// with a value derived from the same locked row, so the overwrite cannot lose
// a concurrent credit.
func (r *UserRepositoryImpl) SetPoints(ctx context.Context, tx pgx.Tx, id int, points float64) error {
	query := `
		UPDATE users
		SET points = $1, updated_at = $2
		WHERE user_id = $3
	`

	result, err := tx.Exec(ctx, query, points, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (r *UserRepositoryImpl) IncrementPoints(ctx context.Context, tx pgx.Tx, id int, delta float64) error {
	query := `
		UPDATE users
		SET points = points + $1, updated_at = $2
		WHERE user_id = $3
	`

	result, err := tx.Exec(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (r *UserRepositoryImpl) SetRefreshToken(ctx context.Context, id int, token *string) error {
	query := `
		UPDATE users
		SET refresh_token = $1, updated_at = $2
		WHERE user_id = $3
	`

	result, err := r.pool.Exec(ctx, query, token, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (r *UserRepositoryImpl) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	return count, err
}
