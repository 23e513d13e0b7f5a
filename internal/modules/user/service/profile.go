package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rightsvoice/backend/internal/modules/user/dto"
	"github.com/rightsvoice/backend/internal/modules/user/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"github.com/rightsvoice/backend/pkg/storage"
)

type ProfileService interface {
	GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error)
	GetCurrent(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (*dto.UserResponse, error)
}

type profileService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
}

func NewProfileService(repo repository.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		imageStorage: imageStorage,
	}
}

func (s *profileService) GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	resp := MapUserResponse(user)
	resp.Email = "" // not exposed on public profiles
	return &resp, nil
}

func (s *profileService) GetCurrent(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	resp := MapUserResponse(user)
	return &resp, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		if existing, _ := s.repo.FindByUsername(ctx, *input.Username); existing != nil {
			return nil, fmt.Errorf("%w: username already taken", apperror.ErrConflict)
		}
		user.Username = *input.Username
	}
	if input.Country != nil {
		user.Country = *input.Country
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := MapUserResponse(user)
	return &resp, nil
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (*dto.UserResponse, error) {
	if s.imageStorage == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", apperror.ErrInternal)
	}

	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, r, "avatars", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	// Best-effort removal of the previous avatar
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		_ = s.imageStorage.DeleteImage(ctx, *user.AvatarURL)
	}

	user.AvatarURL = &url
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := MapUserResponse(user)
	return &resp, nil
}
