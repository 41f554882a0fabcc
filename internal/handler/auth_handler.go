package handler

import (
	"errors"
	"net/http"

	"artexpo-ticketing/internal/auth"
	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/service"
	apperrors "artexpo-ticketing/pkg/app_errors"
	"artexpo-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts service.AccountService
	auth     service.AuthService
}

func NewAuthHandler(accounts service.AccountService, authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{accounts: accounts, auth: authSvc}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.POST("auth/register", h.Register)
		router.POST("auth/login", h.Login)
		router.POST("auth/refresh", h.Refresh)
		router.POST("auth/logout", requireAuth, h.Logout)
		router.GET("profile", requireAuth, h.Profile)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.accounts.Register(c, req)
	if err != nil {
		h.handleAuthError(c, err, "Register")
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	tokens, user, err := h.auth.Login(c, req.Email, req.Password)
	if err != nil {
		h.handleAuthError(c, err, "Login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"user":          user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	access, err := h.auth.Refresh(c, req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err, "Refresh")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.auth.Logout(c, principal.UserID); err != nil {
		h.handleAuthError(c, err, "Logout")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	principal, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	profile, err := h.accounts.Profile(c, principal.UserID)
	if err != nil {
		h.handleAuthError(c, err, "Profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEmailAlreadyRegistered):
		log.Warn("Email already registered")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Email already registered",
		})
	case errors.Is(err, apperrors.ErrInvalidReferralCode):
		log.Warn("Invalid referral code")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid referral code",
		})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		log.Warn("Invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid email or password",
		})
	case errors.Is(err, apperrors.ErrInvalidToken):
		log.Warn("Invalid token")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired token",
		})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
