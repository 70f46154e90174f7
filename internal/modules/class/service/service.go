package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/class/dto"
	"anoa.com/akademia/internal/modules/class/repository"
	notifService "anoa.com/akademia/internal/modules/notification/service"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/cache"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

type ClassService interface {
	ListClasses(ctx context.Context, teacherID uuid.UUID) ([]entity.Class, error)
	GetClass(ctx context.Context, teacherID, classID uuid.UUID) (*entity.Class, error)
	CreateClass(ctx context.Context, teacherID uuid.UUID, req dto.CreateClassRequest) (*entity.Class, error)
	UpdateClass(ctx context.Context, teacherID, classID uuid.UUID, req dto.UpdateClassRequest) error
	DeleteClass(ctx context.Context, teacherID, classID uuid.UUID) error
}

type classService struct {
	repo      repository.ClassRepository
	cache     *cache.QueryCache
	notifier  notifService.Notifier
	sanitizer *bluemonday.Policy
}

func NewClassService(repo repository.ClassRepository, queryCache *cache.QueryCache, notifier notifService.Notifier) ClassService {
	return &classService{
		repo:      repo,
		cache:     queryCache,
		notifier:  notifier,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func classesKey(teacherID uuid.UUID) cache.Key {
	return cache.NewKey(cache.EntityClasses, teacherID.String())
}

// ListClasses is read-through: a hit serves the cached result, a miss reads
// Postgres and fills the cache under the teacher-scoped key.
func (s *classService) ListClasses(ctx context.Context, teacherID uuid.UUID) ([]entity.Class, error) {
	key := classesKey(teacherID)

	var cached []entity.Class
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	classes, err := s.repo.FindByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, classes)
	return classes, nil
}

// GetClass is scoped like the mutations: a teacher only ever sees their own
// classes, so a foreign class id answers forbidden, not the row.
func (s *classService) GetClass(ctx context.Context, teacherID, classID uuid.UUID) (*entity.Class, error) {
	class, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, apperror.ErrForbidden
	}
	return class, nil
}

func (s *classService) CreateClass(ctx context.Context, teacherID uuid.UUID, req dto.CreateClassRequest) (*entity.Class, error) {
	if len(req.Name) < 2 {
		return nil, apperror.Precondition("class name must be at least 2 characters")
	}
	if len(req.Subject) < 2 {
		return nil, apperror.Precondition("subject must be at least 2 characters")
	}

	year := req.AcademicYear
	if year == "" {
		year = defaultAcademicYear(time.Now())
	}

	class := &entity.Class{
		TeacherID:    teacherID, // ownership comes from the actor, not the payload
		Name:         req.Name,
		Subject:      req.Subject,
		GradeLevel:   req.GradeLevel,
		RoomNumber:   req.RoomNumber,
		Description:  s.sanitize(req.Description),
		Schedule:     req.Schedule,
		AcademicYear: year,
	}

	if err := s.repo.Create(ctx, class); err != nil {
		s.notifier.Error(ctx, teacherID, cache.EntityClasses, "Failed to create class: "+err.Error())
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, classesKey(teacherID))
	s.notifier.Success(ctx, teacherID, cache.EntityClasses, class.ID, "Class created successfully")
	return class, nil
}

func (s *classService) UpdateClass(ctx context.Context, teacherID, classID uuid.UUID, req dto.UpdateClassRequest) error {
	if err := s.checkOwnership(ctx, teacherID, classID); err != nil {
		return err
	}

	fields := map[string]any{}
	if req.Name != nil {
		if len(*req.Name) < 2 {
			return apperror.Precondition("class name must be at least 2 characters")
		}
		fields["name"] = *req.Name
	}
	if req.Subject != nil {
		if len(*req.Subject) < 2 {
			return apperror.Precondition("subject must be at least 2 characters")
		}
		fields["subject"] = *req.Subject
	}
	if req.GradeLevel != nil {
		fields["grade_level"] = *req.GradeLevel
	}
	if req.RoomNumber != nil {
		fields["room_number"] = *req.RoomNumber
	}
	if req.Description != nil {
		fields["description"] = s.sanitizer.Sanitize(*req.Description)
	}
	if req.Schedule != nil {
		fields["schedule"] = *req.Schedule
	}
	if req.AcademicYear != nil {
		fields["academic_year"] = *req.AcademicYear
	}
	if len(fields) == 0 {
		return apperror.Precondition("no fields to update")
	}

	if err := s.repo.Update(ctx, classID, fields); err != nil {
		s.notifier.Error(ctx, teacherID, cache.EntityClasses, "Failed to update class: "+err.Error())
		return err
	}

	_ = s.cache.Invalidate(ctx, classesKey(teacherID))
	s.notifier.Success(ctx, teacherID, cache.EntityClasses, classID, "Class updated successfully")
	return nil
}

func (s *classService) DeleteClass(ctx context.Context, teacherID, classID uuid.UUID) error {
	if err := s.checkOwnership(ctx, teacherID, classID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, classID); err != nil {
		s.notifier.Error(ctx, teacherID, cache.EntityClasses, "Failed to delete class: "+err.Error())
		return err
	}

	_ = s.cache.Invalidate(ctx, deleteInvalidationKeys(teacherID, classID)...)
	s.notifier.Success(ctx, teacherID, cache.EntityClasses, classID, "Class deleted successfully")
	return nil
}

// deleteInvalidationKeys covers every cached view anchored on the class, not
// just the teacher's class list: stale rosters, assignment lists and
// attendance sheets must not outlive the class they describe.
func deleteInvalidationKeys(teacherID, classID uuid.UUID) []cache.Key {
	return []cache.Key{
		classesKey(teacherID),
		cache.NewKey(cache.EntityEnrollments, classID.String()),
		cache.NewKey(cache.EntityAvailableStudents, classID.String()),
		cache.NewKey(cache.EntityAssignments, classID.String()),
		cache.NewKey(cache.EntityAttendance, classID.String()),
	}
}

// checkOwnership enforces that only the creating teacher mutates a class.
func (s *classService) checkOwnership(ctx context.Context, teacherID, classID uuid.UUID) error {
	class, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	if class.TeacherID != teacherID {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *classService) sanitize(text *string) *string {
	if text == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*text)
	return &clean
}

// defaultAcademicYear tags a class created in August or later with the year
// starting that August; earlier months belong to the year that started the
// previous August.
func defaultAcademicYear(now time.Time) string {
	start := now.Year()
	if now.Month() < time.August {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}
