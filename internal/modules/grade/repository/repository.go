package repository

import (
	"context"

	"anoa.com/akademia/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GradeRepository interface {
	Create(ctx context.Context, grade *entity.Grade) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*entity.Grade, error)
	FindByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]entity.Grade, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(ctx context.Context, grade *entity.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&entity.Grade{}).Where("id = ?", id).Updates(fields).Error
}

func (r *gradeRepository) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uuid.UUID) (*entity.Grade, error) {
	var grade entity.Grade
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&grade).Error
	if err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepository) FindByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]entity.Grade, error) {
	var grades []entity.Grade
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "full_name", "email", "avatar_url")
		}).
		Find(&grades).Error
	return grades, err
}

func (r *gradeRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Grade, error) {
	var grades []entity.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&grades).Error
	return grades, err
}
