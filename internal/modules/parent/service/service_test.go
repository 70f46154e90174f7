package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	attendanceDto "anoa.com/akademia/internal/modules/attendance/dto"
	enrollmentDto "anoa.com/akademia/internal/modules/enrollment/dto"
	gradeDto "anoa.com/akademia/internal/modules/grade/dto"
	"anoa.com/akademia/internal/modules/parent/dto"
	"anoa.com/akademia/pkg/apperror"
	commonDto "anoa.com/akademia/pkg/dto"
)

type fakeParentRepo struct {
	links map[uuid.UUID]*entity.ParentStudentLink
}

func newFakeParentRepo() *fakeParentRepo {
	return &fakeParentRepo{links: map[uuid.UUID]*entity.ParentStudentLink{}}
}

func (f *fakeParentRepo) CreateLink(ctx context.Context, link *entity.ParentStudentLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	f.links[link.ID] = link
	return nil
}

func (f *fakeParentRepo) FindLinkByID(ctx context.Context, id uuid.UUID) (*entity.ParentStudentLink, error) {
	l, ok := f.links[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (f *fakeParentRepo) FindByParent(ctx context.Context, parentID uuid.UUID) ([]entity.ParentStudentLink, error) {
	var out []entity.ParentStudentLink
	for _, l := range f.links {
		if l.ParentID == parentID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeParentRepo) IsLinked(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	for _, l := range f.links {
		if l.ParentID == parentID && l.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeParentRepo) DeleteLink(ctx context.Context, id uuid.UUID) error {
	delete(f.links, id)
	return nil
}

type fakeUserRepo struct {
	profiles map[uuid.UUID]*entity.Profile
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindProfileByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeUserRepo) FindProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return nil
}

func (f *fakeUserRepo) RolesForUser(ctx context.Context, userID uuid.UUID) ([]entity.RoleAssignment, error) {
	return nil, nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, assignment *entity.RoleAssignment) error {
	return nil
}

func (f *fakeUserRepo) RevokeRole(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeUserRepo) FindProfilesByRole(ctx context.Context, role string, search string) ([]entity.Profile, error) {
	return nil, nil
}

// stubEnrollments records which student id the parent read was delegated for.
type stubEnrollments struct {
	calledFor []uuid.UUID
}

func (s *stubEnrollments) ListEnrollments(ctx context.Context, actorID, classID uuid.UUID) ([]enrollmentDto.EnrollmentResponse, error) {
	return nil, nil
}

func (s *stubEnrollments) EnrollStudent(ctx context.Context, actorID, classID, studentID uuid.UUID) (*entity.ClassEnrollment, error) {
	return nil, nil
}

func (s *stubEnrollments) UnenrollStudent(ctx context.Context, actorID, enrollmentID uuid.UUID) error {
	return nil
}

func (s *stubEnrollments) AvailableStudents(ctx context.Context, actorID, classID uuid.UUID) ([]commonDto.ProfileSummary, error) {
	return nil, nil
}

func (s *stubEnrollments) ImportRoster(ctx context.Context, actorID, classID uuid.UUID, sheet io.Reader) (*enrollmentDto.RosterImportResult, error) {
	return nil, nil
}

func (s *stubEnrollments) MyEnrollments(ctx context.Context, studentID uuid.UUID) ([]entity.ClassEnrollment, error) {
	s.calledFor = append(s.calledFor, studentID)
	return []entity.ClassEnrollment{{StudentID: studentID}}, nil
}

type stubGrades struct{}

func (s *stubGrades) UpsertGrade(ctx context.Context, actorID, assignmentID uuid.UUID, req gradeDto.UpsertGradeRequest) (*entity.Grade, error) {
	return nil, nil
}

func (s *stubGrades) ListByAssignment(ctx context.Context, actorID, assignmentID uuid.UUID) ([]entity.Grade, error) {
	return nil, nil
}

func (s *stubGrades) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Grade, error) {
	return []entity.Grade{{StudentID: studentID}}, nil
}

type stubAttendance struct{}

func (s *stubAttendance) RecordAttendance(ctx context.Context, actorID, classID uuid.UUID, req attendanceDto.RecordAttendanceRequest) (*attendanceDto.RecordAttendanceResult, error) {
	return nil, nil
}

func (s *stubAttendance) ListByClass(ctx context.Context, actorID, classID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	return nil, nil
}

func (s *stubAttendance) MyAttendance(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	return []entity.Attendance{{StudentID: studentID}}, nil
}

func (s *stubAttendance) ExportSheet(ctx context.Context, actorID, classID uuid.UUID, w io.Writer) error {
	return nil
}

type fixture struct {
	svc         ParentService
	repo        *fakeParentRepo
	users       *fakeUserRepo
	enrollments *stubEnrollments
	parentID    uuid.UUID
	studentID   uuid.UUID
}

func newFixture() *fixture {
	parentID := uuid.New()
	studentID := uuid.New()

	repo := newFakeParentRepo()
	users := &fakeUserRepo{profiles: map[uuid.UUID]*entity.Profile{
		parentID:  {ID: parentID, FullName: "A Parent"},
		studentID: {ID: studentID, FullName: "A Student"},
	}}
	enrollments := &stubEnrollments{}

	return &fixture{
		svc:         NewParentService(repo, users, enrollments, &stubGrades{}, &stubAttendance{}),
		repo:        repo,
		users:       users,
		enrollments: enrollments,
		parentID:    parentID,
		studentID:   studentID,
	}
}

func TestCreateLinkRejectsSelfLink(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateLink(context.Background(), dto.CreateLinkRequest{
		ParentID:  fx.parentID,
		StudentID: fx.parentID,
	})
	if !errors.Is(err, apperror.ErrPrecondition) {
		t.Fatalf("expected precondition error for self-link, got %v", err)
	}
}

func TestCreateLinkRejectsDuplicate(t *testing.T) {
	fx := newFixture()

	if _, err := fx.svc.CreateLink(context.Background(), dto.CreateLinkRequest{
		ParentID:  fx.parentID,
		StudentID: fx.studentID,
	}); err != nil {
		t.Fatalf("first link failed: %v", err)
	}

	_, err := fx.svc.CreateLink(context.Background(), dto.CreateLinkRequest{
		ParentID:  fx.parentID,
		StudentID: fx.studentID,
	})
	if !errors.Is(err, apperror.ErrPrecondition) {
		t.Fatalf("expected precondition error for duplicate link, got %v", err)
	}
	if len(fx.repo.links) != 1 {
		t.Errorf("duplicate link must not add rows, have %d", len(fx.repo.links))
	}
}

func TestCreateLinkRejectsUnknownProfiles(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateLink(context.Background(), dto.CreateLinkRequest{
		ParentID:  fx.parentID,
		StudentID: uuid.New(),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown student profile, got %v", err)
	}
}

func TestCreateLinkDefaultsRelationship(t *testing.T) {
	fx := newFixture()

	link, err := fx.svc.CreateLink(context.Background(), dto.CreateLinkRequest{
		ParentID:  fx.parentID,
		StudentID: fx.studentID,
	})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if link.Relationship != "" && link.Relationship != "guardian" {
		t.Errorf("relationship = %q, want empty (column default) or guardian", link.Relationship)
	}
}

func TestChildReadsRequireLink(t *testing.T) {
	fx := newFixture()

	if _, err := fx.svc.ChildEnrollments(context.Background(), fx.parentID, fx.studentID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("enrollments without link: expected forbidden, got %v", err)
	}
	if _, err := fx.svc.ChildGrades(context.Background(), fx.parentID, fx.studentID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("grades without link: expected forbidden, got %v", err)
	}
	if _, err := fx.svc.ChildAttendance(context.Background(), fx.parentID, fx.studentID, nil, nil); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("attendance without link: expected forbidden, got %v", err)
	}
	if len(fx.enrollments.calledFor) != 0 {
		t.Error("unlinked parent must not reach the student read path")
	}
}

func TestChildReadsDelegateWhenLinked(t *testing.T) {
	fx := newFixture()

	if _, err := fx.svc.CreateLink(context.Background(), dto.CreateLinkRequest{
		ParentID:  fx.parentID,
		StudentID: fx.studentID,
	}); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	enrollments, err := fx.svc.ChildEnrollments(context.Background(), fx.parentID, fx.studentID)
	if err != nil {
		t.Fatalf("ChildEnrollments failed: %v", err)
	}
	if len(enrollments) != 1 || enrollments[0].StudentID != fx.studentID {
		t.Errorf("expected the linked student's enrollments, got %v", enrollments)
	}
	if len(fx.enrollments.calledFor) != 1 || fx.enrollments.calledFor[0] != fx.studentID {
		t.Errorf("read must be delegated for the linked student, called for %v", fx.enrollments.calledFor)
	}

	grades, err := fx.svc.ChildGrades(context.Background(), fx.parentID, fx.studentID)
	if err != nil {
		t.Fatalf("ChildGrades failed: %v", err)
	}
	if len(grades) != 1 || grades[0].StudentID != fx.studentID {
		t.Errorf("expected the linked student's grades, got %v", grades)
	}
}

func TestDeleteLinkUnknownID(t *testing.T) {
	fx := newFixture()

	if err := fx.svc.DeleteLink(context.Background(), uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown link, got %v", err)
	}
}
