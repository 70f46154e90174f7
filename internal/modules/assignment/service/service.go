package service

import (
	"context"
	"errors"
	"time"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/assignment/dto"
	"anoa.com/akademia/internal/modules/assignment/repository"
	classRepo "anoa.com/akademia/internal/modules/class/repository"
	notifService "anoa.com/akademia/internal/modules/notification/service"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/cache"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

type AssignmentService interface {
	ListAssignments(ctx context.Context, actorID, classID uuid.UUID) ([]entity.Assignment, error)
	CreateAssignment(ctx context.Context, actorID, classID uuid.UUID, req dto.CreateAssignmentRequest) (*entity.Assignment, error)
	DeleteAssignment(ctx context.Context, actorID, assignmentID uuid.UUID) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	classes   classRepo.ClassRepository
	cache     *cache.QueryCache
	notifier  notifService.Notifier
	sanitizer *bluemonday.Policy
}

func NewAssignmentService(
	repo repository.AssignmentRepository,
	classes classRepo.ClassRepository,
	queryCache *cache.QueryCache,
	notifier notifService.Notifier,
) AssignmentService {
	return &assignmentService{
		repo:      repo,
		classes:   classes,
		cache:     queryCache,
		notifier:  notifier,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func assignmentsKey(classID uuid.UUID) cache.Key {
	return cache.NewKey(cache.EntityAssignments, classID.String())
}

func (s *assignmentService) ListAssignments(ctx context.Context, actorID, classID uuid.UUID) ([]entity.Assignment, error) {
	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	key := assignmentsKey(classID)

	var cached []entity.Assignment
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	assignments, err := s.repo.FindByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, assignments)
	return assignments, nil
}

func (s *assignmentService) CreateAssignment(ctx context.Context, actorID, classID uuid.UUID, req dto.CreateAssignmentRequest) (*entity.Assignment, error) {
	if classID == uuid.Nil || actorID == uuid.Nil {
		return nil, apperror.Precondition("missing class or actor identity")
	}
	if len(req.Title) < 2 {
		return nil, apperror.Precondition("title must be at least 2 characters")
	}

	maxScore := 100.0
	if req.MaxScore != nil {
		if *req.MaxScore < 1 {
			return nil, apperror.Precondition("max score must be at least 1")
		}
		maxScore = *req.MaxScore
	}

	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	kind := req.Type
	if kind == "" {
		kind = entity.AssignmentHomework
	}

	now := time.Now()
	assignment := &entity.Assignment{
		ClassID:     classID,
		Title:       req.Title,
		Description: s.sanitize(req.Description),
		Type:        kind,
		MaxScore:    maxScore,
		DueDate:     req.DueDate,
		PublishedAt: &now,
		CreatedBy:   actorID,
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityAssignments, "Failed to create assignment: "+err.Error())
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, assignmentsKey(classID))
	s.notifier.Success(ctx, actorID, cache.EntityAssignments, assignment.ID, "Assignment created successfully")
	return assignment, nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, actorID, assignmentID uuid.UUID) error {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.checkClassOwner(ctx, actorID, assignment.ClassID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, assignmentID); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityAssignments, "Failed to delete assignment: "+err.Error())
		return err
	}

	_ = s.cache.Invalidate(ctx, assignmentsKey(assignment.ClassID))
	s.notifier.Success(ctx, actorID, cache.EntityAssignments, assignmentID, "Assignment deleted")
	return nil
}

func (s *assignmentService) checkClassOwner(ctx context.Context, actorID, classID uuid.UUID) error {
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

func (s *assignmentService) sanitize(text *string) *string {
	if text == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*text)
	return &clean
}
