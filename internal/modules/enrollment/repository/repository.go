package repository

import (
	"context"

	"anoa.com/akademia/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.ClassEnrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ClassEnrollment, error)
	FindActiveByClass(ctx context.Context, classID uuid.UUID) ([]entity.ClassEnrollment, error)
	ActiveStudentIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error)
	HasActive(ctx context.Context, classID, studentID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	FindActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.ClassEnrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.ClassEnrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ClassEnrollment, error) {
	var enrollment entity.ClassEnrollment
	if err := r.db.WithContext(ctx).First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindActiveByClass returns active enrollments joined with the minimal
// student projection the rosters need.
func (r *enrollmentRepository) FindActiveByClass(ctx context.Context, classID uuid.UUID) ([]entity.ClassEnrollment, error) {
	var enrollments []entity.ClassEnrollment
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND status = ?", classID, entity.EnrollmentActive).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "full_name", "email", "avatar_url")
		}).
		Order("enrolled_at asc").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) ActiveStudentIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.ClassEnrollment{}).
		Where("class_id = ? AND status = ?", classID, entity.EnrollmentActive).
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *enrollmentRepository) HasActive(ctx context.Context, classID, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ClassEnrollment{}).
		Where("class_id = ? AND student_id = ? AND status = ?", classID, studentID, entity.EnrollmentActive).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&entity.ClassEnrollment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *enrollmentRepository) FindActiveByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.ClassEnrollment, error) {
	var enrollments []entity.ClassEnrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, entity.EnrollmentActive).
		Order("enrolled_at desc").
		Find(&enrollments).Error
	return enrollments, err
}
