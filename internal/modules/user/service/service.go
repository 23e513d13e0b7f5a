package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rightsvoice/backend/internal/entity"
	points "github.com/rightsvoice/backend/internal/modules/points/service"
	"github.com/rightsvoice/backend/internal/modules/user/dto"
	"github.com/rightsvoice/backend/internal/modules/user/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	repo          repository.UserRepository
	pointsService points.PointsService
	secret        string
	tokenTTL      time.Duration
	defaultRole   string
}

func NewAuthService(repo repository.UserRepository, pointsService points.PointsService, secret string) AuthService {
	if secret == "" {
		secret = "change-me"
	}

	ttl := 72 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	defaultRole := os.Getenv("DEFAULT_ROLE")
	if defaultRole == "" {
		defaultRole = "member"
	}

	return &authService{
		repo:          repo,
		pointsService: pointsService,
		secret:        secret,
		tokenTTL:      ttl,
		defaultRole:   defaultRole,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error) {
	if existing, _ := s.repo.FindByEmail(ctx, input.Email); existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperror.ErrConflict)
	}
	if existing, _ := s.repo.FindByUsername(ctx, input.Username); existing != nil {
		return nil, fmt.Errorf("%w: username already taken", apperror.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		Country:      input.Country,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Welcome bonus seeds the ledger so new users can participate right away
	if s.pointsService != nil {
		if err := s.pointsService.Award(ctx, user.ID, entity.PointsWelcomeBonus, entity.SourceWelcomeBonus, "Welcome to the platform"); err != nil {
			log.Printf("failed to award welcome bonus to %s: %v", user.ID, err)
		}
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: signed,
		User:  MapUserResponse(user),
	}, nil
}

// MapUserResponse converts a user entity into its public representation.
func MapUserResponse(user *entity.User) dto.UserResponse {
	roleName := user.Role.Name
	if roleName == "" {
		roleName = "member"
	}

	return dto.UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      roleName,
		AvatarURL: user.AvatarURL,
		Country:   user.Country,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
