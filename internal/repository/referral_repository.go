package repository

import (
	"context"

	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const referralColumns = `referral_id, user_id, referral_code, referral_points, count_used, created_at`

type ReferralRepository interface {
	FindByCode(ctx context.Context, code string) (*model.ReferralCode, error)
	FindByUserID(ctx context.Context, userID int) (*model.ReferralCode, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, referral *model.ReferralCode) (*model.ReferralCode, error)
	CodeExists(ctx context.Context, tx pgx.Tx, code string) (bool, error)
	IncrementUsage(ctx context.Context, tx pgx.Tx, id int) error
}

type ReferralRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReferralRepository(pool *pgxpool.Pool) ReferralRepository {
	return &ReferralRepositoryImpl{
		pool: pool,
	}
}

func scanReferral(row pgx.Row, rc *model.ReferralCode) error {
	return row.Scan(
		&rc.ID,
		&rc.UserID,
		&rc.Code,
		&rc.ReferralPoints,
		&rc.CountUsed,
		&rc.CreatedAt,
	)
}

func (r *ReferralRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, referral *model.ReferralCode) (*model.ReferralCode, error) {
	query := `
		INSERT INTO referral_codes (user_id, referral_code, referral_points, count_used)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + referralColumns

	err := scanReferral(tx.QueryRow(ctx, query,
		referral.UserID, referral.Code, referral.ReferralPoints, referral.CountUsed,
	), referral)
	if err != nil {
		return nil, err
	}

	return referral, nil
}

func (r *ReferralRepositoryImpl) FindByCode(ctx context.Context, code string) (*model.ReferralCode, error) {
	query := `
		SELECT ` + referralColumns + `
		FROM referral_codes
		WHERE referral_code = $1
	`

	var referral model.ReferralCode
	err := scanReferral(r.pool.QueryRow(ctx, query, code), &referral)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrInvalidReferralCode
		}
		return nil, err
	}

	return &referral, nil
}

func (r *ReferralRepositoryImpl) FindByUserID(ctx context.Context, userID int) (*model.ReferralCode, error) {
	query := `
		SELECT ` + referralColumns + `
		FROM referral_codes
		WHERE user_id = $1
	`

	var referral model.ReferralCode
	err := scanReferral(r.pool.QueryRow(ctx, query, userID), &referral)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrInvalidReferralCode
		}
		return nil, err
	}

	return &referral, nil
}

func (r *ReferralRepositoryImpl) CodeExists(ctx context.Context, tx pgx.Tx, code string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM referral_codes WHERE referral_code = $1
		)
	`

	var exists bool
	err := tx.QueryRow(ctx, query, code).Scan(&exists)
	return exists, err
}

func (r *ReferralRepositoryImpl) IncrementUsage(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE referral_codes
		SET count_used = count_used + 1
		WHERE referral_id = $1
	`

	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInvalidReferralCode
	}

	return nil
}
