package repository

import (
	"context"

	"anoa.com/akademia/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassRepository interface {
	Create(ctx context.Context, class *entity.Class) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Class, error)
	FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]entity.Class, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *entity.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Class, error) {
	var class entity.Class
	if err := r.db.WithContext(ctx).First(&class, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByTeacher returns the teacher's classes newest-first.
func (r *classRepository) FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]entity.Class, error) {
	var classes []entity.Class
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at desc").
		Find(&classes).Error
	return classes, err
}

func (r *classRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&entity.Class{}).Where("id = ?", id).Updates(fields).Error
}

func (r *classRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Class{}, "id = ?", id).Error
}
