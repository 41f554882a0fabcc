package auth

import (
	"time"

	"artexpo-ticketing/config"
	"artexpo-ticketing/internal/model"
	apperrors "artexpo-ticketing/pkg/app_errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer signs and verifies HS256 access and refresh tokens. Refresh
// tokens are also persisted on the user row; Verify only proves the signature
// and expiry, the auth service checks the stored copy.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(cfg.Secret),
		accessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTTLHours) * time.Hour,
	}
}

func (i *TokenIssuer) IssueAccess(userID int, role model.Role) (string, error) {
	return i.sign(userID, role, i.accessTTL)
}

func (i *TokenIssuer) IssueRefresh(userID int, role model.Role) (string, error) {
	return i.sign(userID, role, i.refreshTTL)
}

func (i *TokenIssuer) sign(userID int, role model.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  float64(userID),
		"role": string(role),
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
		// Unique id so two tokens minted in the same second still differ.
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses a token and resolves it into a Principal.
func (i *TokenIssuer) Verify(tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, apperrors.ErrInvalidToken
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return Principal{}, apperrors.ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok || !model.Role(role).IsValid() {
		return Principal{}, apperrors.ErrInvalidToken
	}

	return Principal{UserID: int(sub), Role: model.Role(role)}, nil
}
