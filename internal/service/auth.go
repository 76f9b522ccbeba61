package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gauri-sd/user-document-management/internal/repository"
	"github.com/gauri-sd/user-document-management/internal/types"
)

type AuthService struct {
	repo           repository.UserRepository
	hashingService *HashingService
	jwtService     *JWTService
	blacklist      *TokenBlacklist
}

func NewAuthService(repo repository.UserRepository, hashingService *HashingService, jwtService *JWTService, blacklist *TokenBlacklist) *AuthService {
	return &AuthService{
		repo:           repo,
		hashingService: hashingService,
		jwtService:     jwtService,
		blacklist:      blacklist,
	}
}

type AuthResponse struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	isExists, err := s.repo.CheckUserExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if isExists {
		return nil, ErrUserExists
	}

	hashedPassword, err := s.hashingService.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	accessToken, err := s.jwtService.GenerateAccessToken(newUser.ID, newUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		UserID:      newUser.ID,
		Email:       newUser.Email,
		Name:        newUser.Name,
		AccessToken: accessToken,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		// Don't reveal if user exists or not for security
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	if !s.hashingService.ComparePassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		AccessToken: accessToken,
	}, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.blacklist.Revoke(token, expiresAt)
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*types.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
