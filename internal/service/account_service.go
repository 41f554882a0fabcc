package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"artexpo-ticketing/internal/auth"
	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/repository"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

// referralPoints is the credit granted to a referrer per redeemed code.
const referralPoints = 50

// referralCodeAttempts bounds the generate-and-check loop when minting a
// fresh code.
const referralCodeAttempts = 5

type AccountService interface {
	// Register creates the user, mints their referral code and, when a valid
	// code was redeemed, credits the referrer, all in one transaction.
	Register(ctx context.Context, req model.RegisterRequest) (*model.RegistrationResult, error)
	// Profile returns the user with their referral code and bookings.
	Profile(ctx context.Context, userID int) (*model.Profile, error)
}

type AccountServiceImpl struct {
	tx        repository.TxManager
	users     repository.UserRepository
	referrals repository.ReferralRepository
	bookings  repository.BookingRepository
}

func NewAccountService(
	tx repository.TxManager,
	users repository.UserRepository,
	referrals repository.ReferralRepository,
	bookings repository.BookingRepository,
) AccountService {
	return &AccountServiceImpl{
		tx:        tx,
		users:     users,
		referrals: referrals,
		bookings:  bookings,
	}
}

func (s *AccountServiceImpl) Register(ctx context.Context, req model.RegisterRequest) (*model.RegistrationResult, error) {
	// Fail fast before the transaction: an invalid referral code or a taken
	// email must not leave any row behind.
	var referrer *model.ReferralCode
	if req.ReferralCode != nil && *req.ReferralCode != "" {
		var err error
		referrer, err = s.referrals.FindByCode(ctx, *req.ReferralCode)
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var result *model.RegistrationResult

	err = s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		user := &model.User{
			Username: req.Username,
			Email:    req.Email,
			Password: hashed,
			Role:     model.RoleUser,
			Points:   0,
		}
		user, err := s.users.Create(ctx, tx, user)
		if err != nil {
			return err
		}

		code, err := s.mintReferralCode(ctx, tx)
		if err != nil {
			return err
		}
		referral := &model.ReferralCode{
			UserID:         user.ID,
			Code:           code,
			ReferralPoints: referralPoints,
			CountUsed:      0,
		}
		referral, err = s.referrals.Create(ctx, tx, referral)
		if err != nil {
			return err
		}

		if referrer != nil {
			if err := s.users.IncrementPoints(ctx, tx, referrer.UserID, referralPoints); err != nil {
				return err
			}
			if err := s.referrals.IncrementUsage(ctx, tx, referrer.ID); err != nil {
				return err
			}
		}

		result = &model.RegistrationResult{User: user, Referral: referral}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// mintReferralCode generates codes until one is free, giving up after a few
// attempts rather than looping forever on a saturated code space.
func (s *AccountServiceImpl) mintReferralCode(ctx context.Context, tx pgx.Tx) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code := generateReferralCode()
		exists, err := s.referrals.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperrors.ErrInternalServerError
}

// generateReferralCode returns 3 random uppercase letters followed by 3
// random digits, e.g. "KQZ417".
func generateReferralCode() string {
	code := make([]byte, 6)
	for i := 0; i < 3; i++ {
		code[i] = byte('A' + rand.IntN(26))
	}
	for i := 3; i < 6; i++ {
		code[i] = byte('0' + rand.IntN(10))
	}
	return string(code)
}

func (s *AccountServiceImpl) Profile(ctx context.Context, userID int) (*model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	referral, err := s.referrals.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrInvalidReferralCode) {
		return nil, err
	}

	bookings, err := s.bookings.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		User:     user,
		Referral: referral,
		Bookings: bookings,
	}, nil
}
