package service

import (
	"context"
	"errors"
	"time"

	"anoa.com/akademia/internal/entity"
	assignmentRepo "anoa.com/akademia/internal/modules/assignment/repository"
	classRepo "anoa.com/akademia/internal/modules/class/repository"
	"anoa.com/akademia/internal/modules/grade/dto"
	"anoa.com/akademia/internal/modules/grade/repository"
	notifService "anoa.com/akademia/internal/modules/notification/service"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/cache"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GradeService interface {
	UpsertGrade(ctx context.Context, actorID, assignmentID uuid.UUID, req dto.UpsertGradeRequest) (*entity.Grade, error)
	ListByAssignment(ctx context.Context, actorID, assignmentID uuid.UUID) ([]entity.Grade, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Grade, error)
}

type gradeService struct {
	repo        repository.GradeRepository
	assignments assignmentRepo.AssignmentRepository
	classes     classRepo.ClassRepository
	cache       *cache.QueryCache
	notifier    notifService.Notifier
}

func NewGradeService(
	repo repository.GradeRepository,
	assignments assignmentRepo.AssignmentRepository,
	classes classRepo.ClassRepository,
	queryCache *cache.QueryCache,
	notifier notifService.Notifier,
) GradeService {
	return &gradeService{
		repo:        repo,
		assignments: assignments,
		classes:     classes,
		cache:       queryCache,
		notifier:    notifier,
	}
}

func gradesKey(assignmentID uuid.UUID) cache.Key {
	return cache.NewKey(cache.EntityGrades, assignmentID.String())
}

// UpsertGrade writes the (assignment, student) grade, creating the row on
// first grading and updating it afterwards. Grading stamps graded_at and
// graded_by from the acting teacher.
func (s *gradeService) UpsertGrade(ctx context.Context, actorID, assignmentID uuid.UUID, req dto.UpsertGradeRequest) (*entity.Grade, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if err := s.checkClassOwner(ctx, actorID, assignment.ClassID); err != nil {
		return nil, err
	}

	if req.Score != nil && *req.Score > assignment.MaxScore {
		return nil, apperror.Precondition("score exceeds the assignment's max score")
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return nil, apperror.Precondition("invalid student id")
	}

	now := time.Now()
	existing, err := s.repo.FindByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		grade := &entity.Grade{
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Score:        req.Score,
			Feedback:     req.Feedback,
			SubmittedAt:  req.SubmittedAt,
		}
		if req.Score != nil || req.Feedback != nil {
			grade.GradedAt = &now
			grade.GradedBy = &actorID
		}
		if err := s.repo.Create(ctx, grade); err != nil {
			s.notifier.Error(ctx, actorID, cache.EntityGrades, "Failed to record grade: "+err.Error())
			return nil, err
		}
		_ = s.cache.Invalidate(ctx, gradesKey(assignmentID))
		s.notifier.Success(ctx, actorID, cache.EntityGrades, grade.ID, "Grade recorded successfully")
		return grade, nil
	}

	fields := map[string]any{}
	if req.Score != nil {
		fields["score"] = *req.Score
	}
	if req.Feedback != nil {
		fields["feedback"] = *req.Feedback
	}
	if req.SubmittedAt != nil {
		fields["submitted_at"] = *req.SubmittedAt
	}
	if req.Score != nil || req.Feedback != nil {
		fields["graded_at"] = now
		fields["graded_by"] = actorID
	}
	if len(fields) == 0 {
		return nil, apperror.Precondition("no fields to update")
	}

	if err := s.repo.Update(ctx, existing.ID, fields); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityGrades, "Failed to update grade: "+err.Error())
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, gradesKey(assignmentID))
	s.notifier.Success(ctx, actorID, cache.EntityGrades, existing.ID, "Grade updated successfully")
	return s.repo.FindByAssignmentAndStudent(ctx, assignmentID, studentID)
}

// ListByAssignment resolves the assignment's class and applies the same
// ownership check grading does before serving the sheet.
func (s *gradeService) ListByAssignment(ctx context.Context, actorID, assignmentID uuid.UUID) ([]entity.Grade, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if err := s.checkClassOwner(ctx, actorID, assignment.ClassID); err != nil {
		return nil, err
	}

	key := gradesKey(assignmentID)

	var cached []entity.Grade
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	grades, err := s.repo.FindByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, grades)
	return grades, nil
}

func (s *gradeService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Grade, error) {
	return s.repo.FindByStudent(ctx, studentID)
}

func (s *gradeService) checkClassOwner(ctx context.Context, actorID, classID uuid.UUID) error {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	if class.TeacherID != actorID {
		return apperror.ErrForbidden
	}
	return nil
}
