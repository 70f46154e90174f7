package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/assignment/dto"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/cache"
)

type fakeAssignmentRepo struct {
	assignments map[uuid.UUID]*entity.Assignment
	failCreate  error
	createCalls int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[uuid.UUID]*entity.Assignment{}}
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *entity.Assignment) error {
	f.createCalls++
	if f.failCreate != nil {
		return f.failCreate
	}
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	f.assignments[assignment.ID] = assignment
	return nil
}

func (f *fakeAssignmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAssignmentRepo) FindByClass(ctx context.Context, classID uuid.UUID) ([]entity.Assignment, error) {
	var out []entity.Assignment
	for _, a := range f.assignments {
		if a.ClassID == classID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.assignments, id)
	return nil
}

type fakeClassRepo struct {
	classes map[uuid.UUID]*entity.Class
}

func (f *fakeClassRepo) Create(ctx context.Context, class *entity.Class) error { return nil }

func (f *fakeClassRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeClassRepo) FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]entity.Class, error) {
	return nil, nil
}

func (f *fakeClassRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return nil
}

func (f *fakeClassRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeNotifier struct {
	successes int
	errors    int
}

func (f *fakeNotifier) Success(ctx context.Context, userID uuid.UUID, entityTag cache.Entity, entityID uuid.UUID, message string) {
	f.successes++
}

func (f *fakeNotifier) Error(ctx context.Context, userID uuid.UUID, entityTag cache.Entity, message string) {
	f.errors++
}

type fixture struct {
	svc       AssignmentService
	repo      *fakeAssignmentRepo
	notifier  *fakeNotifier
	teacherID uuid.UUID
	classID   uuid.UUID
}

func newFixture() *fixture {
	teacherID := uuid.New()
	classID := uuid.New()

	repo := newFakeAssignmentRepo()
	classes := &fakeClassRepo{classes: map[uuid.UUID]*entity.Class{
		classID: {ID: classID, TeacherID: teacherID},
	}}
	notifier := &fakeNotifier{}

	return &fixture{
		svc:       NewAssignmentService(repo, classes, cache.New(nil, time.Minute), notifier),
		repo:      repo,
		notifier:  notifier,
		teacherID: teacherID,
		classID:   classID,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateAssignmentRejectsLowMaxScoreLocally(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, fx.classID, dto.CreateAssignmentRequest{
		Title:    "Quiz 1",
		MaxScore: floatPtr(0.5),
	})

	if !errors.Is(err, apperror.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if fx.repo.createCalls != 0 {
		t.Errorf("local rejection must not reach the repository, got %d create calls", fx.repo.createCalls)
	}
	if fx.notifier.errors != 0 {
		t.Errorf("local rejection must not emit notices, got %d", fx.notifier.errors)
	}
}

func TestCreateAssignmentDefaults(t *testing.T) {
	fx := newFixture()

	assignment, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, fx.classID, dto.CreateAssignmentRequest{
		Title: "Homework 1",
	})
	if err != nil {
		t.Fatalf("CreateAssignment failed: %v", err)
	}

	if assignment.MaxScore != 100 {
		t.Errorf("max score = %v, want default 100", assignment.MaxScore)
	}
	if assignment.Type != entity.AssignmentHomework {
		t.Errorf("type = %q, want default %q", assignment.Type, entity.AssignmentHomework)
	}
	if assignment.PublishedAt == nil {
		t.Error("published_at should be stamped on create")
	}
	if assignment.CreatedBy != fx.teacherID {
		t.Errorf("created_by = %s, want actor %s", assignment.CreatedBy, fx.teacherID)
	}
}

func TestCreateAssignmentMissingIdentity(t *testing.T) {
	fx := newFixture()

	if _, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, uuid.Nil, dto.CreateAssignmentRequest{Title: "x"}); !errors.Is(err, apperror.ErrPrecondition) {
		t.Errorf("nil class: expected precondition, got %v", err)
	}
	if _, err := fx.svc.CreateAssignment(context.Background(), uuid.Nil, fx.classID, dto.CreateAssignmentRequest{Title: "x"}); !errors.Is(err, apperror.ErrPrecondition) {
		t.Errorf("nil actor: expected precondition, got %v", err)
	}
}

func TestFailedCreateLeavesListUnchanged(t *testing.T) {
	fx := newFixture()

	if _, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, fx.classID, dto.CreateAssignmentRequest{Title: "Before"}); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	fx.repo.failCreate = errors.New("insert failed")
	_, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, fx.classID, dto.CreateAssignmentRequest{Title: "After"})
	if err == nil {
		t.Fatal("expected create to fail")
	}

	list, err := fx.svc.ListAssignments(context.Background(), fx.teacherID, fx.classID)
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Before" {
		t.Errorf("failed create must leave the list unchanged, got %v", list)
	}
	if fx.notifier.errors != 1 {
		t.Errorf("expected exactly one error notice for the failed create, got %d", fx.notifier.errors)
	}
}

func TestCreateAssignmentRejectsShortTitle(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, fx.classID, dto.CreateAssignmentRequest{Title: "Q"})
	if !errors.Is(err, apperror.ErrPrecondition) {
		t.Fatalf("expected precondition error for one-character title, got %v", err)
	}
	if fx.repo.createCalls != 0 {
		t.Errorf("local rejection must not reach the repository, got %d create calls", fx.repo.createCalls)
	}
}

func TestListAssignmentsRequiresClassOwnership(t *testing.T) {
	fx := newFixture()

	if _, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, fx.classID, dto.CreateAssignmentRequest{Title: "Quiz"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := fx.svc.ListAssignments(context.Background(), uuid.New(), fx.classID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("non-owner list must be forbidden, got %v", err)
	}
}

func TestDeleteAssignmentRequiresClassOwnership(t *testing.T) {
	fx := newFixture()

	assignment, err := fx.svc.CreateAssignment(context.Background(), fx.teacherID, fx.classID, dto.CreateAssignmentRequest{Title: "Quiz"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := fx.svc.DeleteAssignment(context.Background(), uuid.New(), assignment.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, ok := fx.repo.assignments[assignment.ID]; !ok {
		t.Error("forbidden delete must not remove the assignment")
	}
}
