package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	attendanceService "anoa.com/akademia/internal/modules/attendance/service"
	enrollmentService "anoa.com/akademia/internal/modules/enrollment/service"
	gradeService "anoa.com/akademia/internal/modules/grade/service"
	"anoa.com/akademia/internal/modules/parent/dto"
	"anoa.com/akademia/internal/modules/parent/repository"
	userRepo "anoa.com/akademia/internal/modules/user/repository"
	"anoa.com/akademia/pkg/apperror"
)

// ParentService maintains parent-student links and proxies a parent's read
// access to their linked students' records. Every child read is gated on an
// existing link; there is no other path from a parent to student data.
type ParentService interface {
	CreateLink(ctx context.Context, req dto.CreateLinkRequest) (*entity.ParentStudentLink, error)
	DeleteLink(ctx context.Context, linkID uuid.UUID) error
	MyChildren(ctx context.Context, parentID uuid.UUID) ([]entity.ParentStudentLink, error)
	ChildEnrollments(ctx context.Context, parentID, studentID uuid.UUID) ([]entity.ClassEnrollment, error)
	ChildGrades(ctx context.Context, parentID, studentID uuid.UUID) ([]entity.Grade, error)
	ChildAttendance(ctx context.Context, parentID, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error)
}

type parentService struct {
	repo        repository.ParentRepository
	users       userRepo.UserRepository
	enrollments enrollmentService.EnrollmentService
	grades      gradeService.GradeService
	attendance  attendanceService.AttendanceService
}

func NewParentService(
	repo repository.ParentRepository,
	users userRepo.UserRepository,
	enrollments enrollmentService.EnrollmentService,
	grades gradeService.GradeService,
	attendance attendanceService.AttendanceService,
) ParentService {
	return &parentService{
		repo:        repo,
		users:       users,
		enrollments: enrollments,
		grades:      grades,
		attendance:  attendance,
	}
}

func (s *parentService) CreateLink(ctx context.Context, req dto.CreateLinkRequest) (*entity.ParentStudentLink, error) {
	if req.ParentID == req.StudentID {
		return nil, apperror.Precondition("a profile cannot be linked to itself")
	}

	for _, id := range []uuid.UUID{req.ParentID, req.StudentID} {
		if _, err := s.users.FindProfileByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.ErrNotFound
			}
			return nil, err
		}
	}

	linked, err := s.repo.IsLinked(ctx, req.ParentID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if linked {
		return nil, apperror.Precondition("parent is already linked to this student")
	}

	link := &entity.ParentStudentLink{
		ParentID:  req.ParentID,
		StudentID: req.StudentID,
	}
	if req.Relationship != "" {
		link.Relationship = req.Relationship
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *parentService) DeleteLink(ctx context.Context, linkID uuid.UUID) error {
	if _, err := s.repo.FindLinkByID(ctx, linkID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return s.repo.DeleteLink(ctx, linkID)
}

func (s *parentService) MyChildren(ctx context.Context, parentID uuid.UUID) ([]entity.ParentStudentLink, error) {
	return s.repo.FindByParent(ctx, parentID)
}

func (s *parentService) ChildEnrollments(ctx context.Context, parentID, studentID uuid.UUID) ([]entity.ClassEnrollment, error) {
	if err := s.requireLink(ctx, parentID, studentID); err != nil {
		return nil, err
	}
	return s.enrollments.MyEnrollments(ctx, studentID)
}

func (s *parentService) ChildGrades(ctx context.Context, parentID, studentID uuid.UUID) ([]entity.Grade, error) {
	if err := s.requireLink(ctx, parentID, studentID); err != nil {
		return nil, err
	}
	return s.grades.ListByStudent(ctx, studentID)
}

func (s *parentService) ChildAttendance(ctx context.Context, parentID, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	if err := s.requireLink(ctx, parentID, studentID); err != nil {
		return nil, err
	}
	return s.attendance.MyAttendance(ctx, studentID, from, to)
}

func (s *parentService) requireLink(ctx context.Context, parentID, studentID uuid.UUID) error {
	linked, err := s.repo.IsLinked(ctx, parentID, studentID)
	if err != nil {
		return err
	}
	if !linked {
		return apperror.ErrForbidden
	}
	return nil
}
