package repository

import (
	"context"
	"time"

	"anoa.com/akademia/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceRepository interface {
	Create(ctx context.Context, record *entity.Attendance) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	FindByClassStudentDate(ctx context.Context, classID, studentID uuid.UUID, date time.Time) (*entity.Attendance, error)
	FindByClass(ctx context.Context, classID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, record *entity.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&entity.Attendance{}).Where("id = ?", id).Updates(fields).Error
}

func (r *attendanceRepository) FindByClassStudentDate(ctx context.Context, classID, studentID uuid.UUID, date time.Time) (*entity.Attendance, error) {
	var record entity.Attendance
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND student_id = ? AND date = ?", classID, studentID, date).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepository) FindByClass(ctx context.Context, classID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	query := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Preload("Student", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "full_name", "email", "avatar_url")
		}).
		Order("date desc")
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}

	var records []entity.Attendance
	err := query.Find(&records).Error
	return records, err
}

func (r *attendanceRepository) FindByStudent(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	query := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date desc")
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}

	var records []entity.Attendance
	err := query.Find(&records).Error
	return records, err
}
