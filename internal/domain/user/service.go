// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/pkg/apperror"
	"github.com/Anand95733/clothify-backend/internal/pkg/auth"
	"github.com/Anand95733/clothify-backend/internal/pkg/notify"
)

// WelcomeSender delivers welcome emails. Satisfied by email.EmailService.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, to, userName string) error
}

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	logger          *logrus.Logger
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	mailer          WelcomeSender
	dispatcher      *notify.Dispatcher
}

// NewService creates a new user service. Mailer and dispatcher may be
// nil, in which case welcome emails are skipped.
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, mailer WelcomeSender, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		logger:          logger,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		mailer:          mailer,
		dispatcher:      dispatcher,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return nil, apperror.InvalidInput("%s", err.Error())
	}

	var existing User
	result := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		return nil, apperror.InvalidInput("user with this email already exists")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(result.Error)
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u := User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
		IsAdmin:      false,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": u.ID,
		"email":   u.Email,
	}).Info("User registered")

	s.sendWelcome(&u)

	return s.issueTokens(ctx, &u)
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var u User
	result := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", req.Email, true).First(&u)
	if result.Error != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	return s.issueTokens(ctx, &u)
}

// RefreshToken generates new tokens using a refresh token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	var u User
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", claims.UserID, true).First(&u)
	if result.Error != nil {
		return nil, apperror.Unauthorized("user not found or inactive")
	}

	return s.issueTokens(ctx, &u)
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var u User
	result := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&u)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal(result.Error)
	}
	return &u, nil
}

func (s *Service) issueTokens(ctx context.Context, u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(u).Update("last_login_at", now).Error; err != nil {
		s.logger.WithField("user_id", u.ID).WithError(err).Warn("Failed to update last login")
	}

	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

func (s *Service) sendWelcome(u *User) {
	if s.mailer == nil || s.dispatcher == nil {
		return
	}

	to, name := u.Email, u.GetFullName()
	s.dispatcher.Dispatch("welcome_email", func(ctx context.Context) error {
		return s.mailer.SendWelcome(ctx, to, name)
	})
}
