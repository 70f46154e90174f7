package service

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/user/dto"
	"anoa.com/akademia/internal/modules/user/repository"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/storage"
)

type ProfileService interface {
	UpdateProfile(ctx context.Context, profileID uuid.UUID, req dto.UpdateProfileRequest) (*entity.Profile, error)
	UploadAvatar(ctx context.Context, profileID uuid.UUID, file io.Reader, fileName string) (string, error)
}

type profileService struct {
	repo    repository.UserRepository
	storage storage.ImageStorage
}

func NewProfileService(repo repository.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{repo: repo, storage: imageStorage}
}

func (s *profileService) UpdateProfile(ctx context.Context, profileID uuid.UUID, req dto.UpdateProfileRequest) (*entity.Profile, error) {
	fields := map[string]any{}
	if req.FullName != nil {
		if len(*req.FullName) < 2 {
			return nil, apperror.Precondition("full name must be at least 2 characters")
		}
		fields["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if len(fields) == 0 {
		return nil, apperror.Precondition("no fields to update")
	}

	if err := s.repo.UpdateProfile(ctx, profileID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindProfileByID(ctx, profileID)
}

func (s *profileService) UploadAvatar(ctx context.Context, profileID uuid.UUID, file io.Reader, fileName string) (string, error) {
	if s.storage == nil {
		return "", apperror.Precondition("avatar storage is not configured")
	}

	profile, err := s.repo.FindProfileByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.ErrNotFound
		}
		return "", err
	}

	url, err := s.storage.UploadImage(ctx, file, "avatars", fileName)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateProfile(ctx, profileID, map[string]any{"avatar_url": url}); err != nil {
		return "", err
	}

	// Best effort: a leaked old avatar only costs storage space.
	if profile.AvatarURL != nil && *profile.AvatarURL != "" {
		if err := s.storage.DeleteImage(ctx, *profile.AvatarURL); err != nil {
			log.Printf("failed to delete previous avatar: %v", err)
		}
	}

	return url, nil
}
