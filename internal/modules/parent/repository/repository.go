package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
)

type ParentRepository interface {
	CreateLink(ctx context.Context, link *entity.ParentStudentLink) error
	FindLinkByID(ctx context.Context, id uuid.UUID) (*entity.ParentStudentLink, error)
	FindByParent(ctx context.Context, parentID uuid.UUID) ([]entity.ParentStudentLink, error)
	IsLinked(ctx context.Context, parentID, studentID uuid.UUID) (bool, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error
}

type parentRepository struct {
	db *gorm.DB
}

func NewParentRepository(db *gorm.DB) ParentRepository {
	return &parentRepository{db: db}
}

func (r *parentRepository) CreateLink(ctx context.Context, link *entity.ParentStudentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *parentRepository) FindLinkByID(ctx context.Context, id uuid.UUID) (*entity.ParentStudentLink, error) {
	var link entity.ParentStudentLink
	if err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *parentRepository) FindByParent(ctx context.Context, parentID uuid.UUID) ([]entity.ParentStudentLink, error) {
	var links []entity.ParentStudentLink
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "full_name", "email", "avatar_url")
		}).
		Order("created_at asc").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *parentRepository) IsLinked(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ParentStudentLink{}).
		Where("parent_id = ? AND student_id = ?", parentID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *parentRepository) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.ParentStudentLink{}, "id = ?", id).Error
}
