package repository

import (
	"context"

	"anoa.com/akademia/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *entity.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error)
	FindByClass(ctx context.Context, classID uuid.UUID) ([]entity.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *entity.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error) {
	var assignment entity.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByClass(ctx context.Context, classID uuid.UUID) ([]entity.Assignment, error) {
	var assignments []entity.Assignment
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at desc").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Assignment{}, "id = ?", id).Error
}
