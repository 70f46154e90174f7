package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/organization/dto"
	"anoa.com/akademia/internal/modules/organization/repository"
	notifService "anoa.com/akademia/internal/modules/notification/service"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/cache"
)

type OrganizationService interface {
	ListOrganizations(ctx context.Context) ([]entity.Organization, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*entity.Organization, error)
	CreateOrganization(ctx context.Context, actorID uuid.UUID, req dto.CreateOrganizationRequest) (*entity.Organization, error)
	UpdateOrganization(ctx context.Context, actorID, id uuid.UUID, req dto.UpdateOrganizationRequest) error
	DeleteOrganization(ctx context.Context, actorID, id uuid.UUID) error
}

type organizationService struct {
	repo     repository.OrganizationRepository
	cache    *cache.QueryCache
	notifier notifService.Notifier
}

func NewOrganizationService(repo repository.OrganizationRepository, queryCache *cache.QueryCache, notifier notifService.Notifier) OrganizationService {
	return &organizationService{repo: repo, cache: queryCache, notifier: notifier}
}

// The organization list is global, so a single scope covers every reader.
func organizationsKey() cache.Key {
	return cache.NewKey(cache.EntityOrganizations, "all")
}

func (s *organizationService) ListOrganizations(ctx context.Context) ([]entity.Organization, error) {
	key := organizationsKey()

	var cached []entity.Organization
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	orgs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, orgs)
	return orgs, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

func (s *organizationService) CreateOrganization(ctx context.Context, actorID uuid.UUID, req dto.CreateOrganizationRequest) (*entity.Organization, error) {
	if len(req.Name) < 2 {
		return nil, apperror.Precondition("organization name must be at least 2 characters")
	}

	org := &entity.Organization{
		Name:     req.Name,
		Category: req.Category,
		LogoURL:  req.LogoURL,
	}

	if err := s.repo.Create(ctx, org); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityOrganizations, "Failed to create organization: "+err.Error())
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, organizationsKey())
	s.notifier.Success(ctx, actorID, cache.EntityOrganizations, org.ID, "Organization created successfully")
	return org, nil
}

func (s *organizationService) UpdateOrganization(ctx context.Context, actorID, id uuid.UUID, req dto.UpdateOrganizationRequest) error {
	if _, err := s.GetOrganization(ctx, id); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		if len(*req.Name) < 2 {
			return apperror.Precondition("organization name must be at least 2 characters")
		}
		fields["name"] = *req.Name
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.LogoURL != nil {
		fields["logo_url"] = *req.LogoURL
	}
	if len(fields) == 0 {
		return apperror.Precondition("no fields to update")
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityOrganizations, "Failed to update organization: "+err.Error())
		return err
	}

	_ = s.cache.Invalidate(ctx, organizationsKey())
	s.notifier.Success(ctx, actorID, cache.EntityOrganizations, id, "Organization updated successfully")
	return nil
}

func (s *organizationService) DeleteOrganization(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := s.GetOrganization(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityOrganizations, "Failed to delete organization: "+err.Error())
		return err
	}

	_ = s.cache.Invalidate(ctx, organizationsKey())
	s.notifier.Success(ctx, actorID, cache.EntityOrganizations, id, "Organization deleted successfully")
	return nil
}
