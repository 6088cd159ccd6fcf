package services

import (
	"context"
	"errors"
	"time"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/auth"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// sweeper is implemented by ExamService; logins trigger an opportunistic
// status sweep in the background.
type sweeper interface {
	SweepStatuses(ctx context.Context) (int64, error)
}

// AuthService handles login and refresh token rotation
type AuthService struct {
	userRepo  *repositories.UserRepository
	tokenRepo *repositories.TokenRepository
	jwt       *auth.JWTService
	sweeper   sweeper
}

// NewAuthService creates a new auth service instance
func NewAuthService(userRepo *repositories.UserRepository, tokenRepo *repositories.TokenRepository, jwt *auth.JWTService, sw sweeper) *AuthService {
	return &AuthService{userRepo: userRepo, tokenRepo: tokenRepo, jwt: jwt, sweeper: sw}
}

// Login verifies credentials and issues a token pair. A successful login
// also kicks the exam status sweep in a goroutine; sweep failures only log.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if s.sweeper != nil {
		go func() {
			sweepCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if _, err := s.sweeper.SweepStatuses(sweepCtx); err != nil {
				logger.Warn().Err(err).Msg("Post-login status sweep failed")
			}
		}()
	}

	logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return tokens, user, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.GetRefreshToken(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.RevokeRefreshToken(ctx, rawToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh token of a user
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.tokenRepo.RevokeUserTokens(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.SaveRefreshToken(ctx, user.ID, refreshToken, s.jwt.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
		TokenType:        "Bearer",
	}, nil
}
