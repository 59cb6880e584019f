package service

import (
	"context"
	"errors"

	"github.com/darematch/api/internal/database"
	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/pkg/jwt"
)

// TokenUserRepository is the slice of user storage token handling needs
type TokenUserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// TokenService validates externally issued access tokens and provisions the
// local user record the first time an identity shows up. Token issuance
// belongs to the identity provider; this service only verifies against its
// public key.
type TokenService struct {
	jwtService *jwt.Service
	userRepo   TokenUserRepository
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	JWTService *jwt.Service
	UserRepo   TokenUserRepository
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	return &TokenService{
		jwtService: cfg.JWTService,
		userRepo:   cfg.UserRepo,
	}
}

// ValidateAccessToken validates an access token and returns the claims
func (s *TokenService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return s.jwtService.Validate(token)
}

// EnsureUser returns the local record for an authenticated identity,
// creating it on first sight. Two requests racing on the same fresh identity
// both succeed: the loser of the create re-reads the winner's record.
func (s *TokenService) EnsureUser(ctx context.Context, claims *jwt.Claims) (*model.User, error) {
	if claims == nil || claims.UserID == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &model.User{
		ID:    claims.UserID,
		Email: claims.Email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return s.userRepo.GetByID(ctx, claims.UserID)
		}
		return nil, err
	}
	return user, nil
}
