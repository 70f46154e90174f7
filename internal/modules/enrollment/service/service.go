package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"anoa.com/akademia/internal/entity"
	classRepo "anoa.com/akademia/internal/modules/class/repository"
	"anoa.com/akademia/internal/modules/enrollment/dto"
	"anoa.com/akademia/internal/modules/enrollment/repository"
	notifService "anoa.com/akademia/internal/modules/notification/service"
	userRepo "anoa.com/akademia/internal/modules/user/repository"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/authz"
	"anoa.com/akademia/pkg/cache"
	commonDto "anoa.com/akademia/pkg/dto"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type EnrollmentService interface {
	ListEnrollments(ctx context.Context, actorID, classID uuid.UUID) ([]dto.EnrollmentResponse, error)
	EnrollStudent(ctx context.Context, actorID, classID, studentID uuid.UUID) (*entity.ClassEnrollment, error)
	UnenrollStudent(ctx context.Context, actorID, enrollmentID uuid.UUID) error
	AvailableStudents(ctx context.Context, actorID, classID uuid.UUID) ([]commonDto.ProfileSummary, error)
	ImportRoster(ctx context.Context, actorID, classID uuid.UUID, sheet io.Reader) (*dto.RosterImportResult, error)
	MyEnrollments(ctx context.Context, studentID uuid.UUID) ([]entity.ClassEnrollment, error)
}

type enrollmentService struct {
	repo     repository.EnrollmentRepository
	classes  classRepo.ClassRepository
	users    userRepo.UserRepository
	cache    *cache.QueryCache
	notifier notifService.Notifier
}

func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	classes classRepo.ClassRepository,
	users userRepo.UserRepository,
	queryCache *cache.QueryCache,
	notifier notifService.Notifier,
) EnrollmentService {
	return &enrollmentService{
		repo:     repo,
		classes:  classes,
		users:    users,
		cache:    queryCache,
		notifier: notifier,
	}
}

func enrollmentsKey(classID uuid.UUID) cache.Key {
	return cache.NewKey(cache.EntityEnrollments, classID.String())
}

func availableStudentsKey(classID uuid.UUID) cache.Key {
	return cache.NewKey(cache.EntityAvailableStudents, classID.String())
}

// ListEnrollments serves the class roster, but only to the owning teacher.
func (s *enrollmentService) ListEnrollments(ctx context.Context, actorID, classID uuid.UUID) ([]dto.EnrollmentResponse, error) {
	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	key := enrollmentsKey(classID)

	var cached []dto.EnrollmentResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	enrollments, err := s.repo.FindActiveByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		resp := dto.EnrollmentResponse{
			ID:         e.ID,
			ClassID:    e.ClassID,
			Status:     e.Status,
			EnrolledAt: e.EnrolledAt,
		}
		if e.Student != nil {
			resp.Student = commonDto.ProfileSummary{
				ID:        e.Student.ID,
				FullName:  e.Student.FullName,
				Email:     e.Student.Email,
				AvatarURL: e.Student.AvatarURL,
			}
		}
		responses = append(responses, resp)
	}

	_ = s.cache.Set(ctx, key, responses)
	return responses, nil
}

func (s *enrollmentService) EnrollStudent(ctx context.Context, actorID, classID, studentID uuid.UUID) (*entity.ClassEnrollment, error) {
	if classID == uuid.Nil {
		return nil, apperror.Precondition("no class selected")
	}

	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	active, err := s.repo.HasActive(ctx, classID, studentID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, apperror.Precondition("student is already enrolled in this class")
	}

	enrollment := &entity.ClassEnrollment{
		ClassID:   classID,
		StudentID: studentID,
		Status:    entity.EnrollmentActive,
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityEnrollments, "Failed to enroll student: "+err.Error())
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, enrollmentsKey(classID), availableStudentsKey(classID))
	s.notifier.Success(ctx, actorID, cache.EntityEnrollments, enrollment.ID, "Student enrolled successfully")
	return enrollment, nil
}

// UnenrollStudent flips the enrollment to dropped. The row stays so
// attendance and grade history keep their anchor.
func (s *enrollmentService) UnenrollStudent(ctx context.Context, actorID, enrollmentID uuid.UUID) error {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if err := s.checkClassOwner(ctx, actorID, enrollment.ClassID); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, enrollmentID, entity.EnrollmentDropped); err != nil {
		s.notifier.Error(ctx, actorID, cache.EntityEnrollments, "Failed to remove student: "+err.Error())
		return err
	}

	_ = s.cache.Invalidate(ctx, enrollmentsKey(enrollment.ClassID), availableStudentsKey(enrollment.ClassID))
	s.notifier.Success(ctx, actorID, cache.EntityEnrollments, enrollmentID, "Student removed from class")
	return nil
}

// AvailableStudents is the set difference between all student-role profiles
// and the class's actively enrolled student ids: two fetches plus an O(n+m)
// hash-set subtraction. Fine at directory scale; it would have to move into
// a joined query before that assumption breaks.
func (s *enrollmentService) AvailableStudents(ctx context.Context, actorID, classID uuid.UUID) ([]commonDto.ProfileSummary, error) {
	if classID == uuid.Nil {
		return nil, apperror.Precondition("no class selected")
	}

	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	key := availableStudentsKey(classID)
	var cached []commonDto.ProfileSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	students, err := s.users.FindProfilesByRole(ctx, authz.RoleStudent.String(), "")
	if err != nil {
		return nil, err
	}

	enrolledIDs, err := s.repo.ActiveStudentIDs(ctx, classID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[uuid.UUID]struct{}, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[id] = struct{}{}
	}

	available := make([]commonDto.ProfileSummary, 0, len(students))
	for _, p := range students {
		if _, ok := enrolled[p.ID]; ok {
			continue
		}
		available = append(available, commonDto.ProfileSummary{
			ID:        p.ID,
			FullName:  p.FullName,
			Email:     p.Email,
			AvatarURL: p.AvatarURL,
		})
	}

	_ = s.cache.Set(ctx, key, available)
	return available, nil
}

// ImportRoster reads an .xlsx with a header row, email in column A and full
// name in column B, and enrolls every matching student profile. Rows without
// a known student profile are reported back, not failed on.
func (s *enrollmentService) ImportRoster(ctx context.Context, actorID, classID uuid.UUID, sheet io.Reader) (*dto.RosterImportResult, error) {
	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(sheet)
	if err != nil {
		return nil, apperror.Precondition("failed to open excel file: " + err.Error())
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, apperror.Precondition("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheetName, err)
	}

	result := &dto.RosterImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		email := row[0]

		profile, err := s.users.FindProfileByEmail(ctx, email)
		if err != nil {
			result.Skipped = append(result.Skipped, email)
			continue
		}

		active, err := s.repo.HasActive(ctx, classID, profile.ID)
		if err != nil {
			return nil, err
		}
		if active {
			result.Skipped = append(result.Skipped, email)
			continue
		}

		if err := s.repo.Create(ctx, &entity.ClassEnrollment{
			ClassID:   classID,
			StudentID: profile.ID,
			Status:    entity.EnrollmentActive,
		}); err != nil {
			result.Skipped = append(result.Skipped, email)
			continue
		}
		result.Enrolled++
	}

	_ = s.cache.Invalidate(ctx, enrollmentsKey(classID), availableStudentsKey(classID))
	s.notifier.Success(ctx, actorID, cache.EntityEnrollments, classID,
		fmt.Sprintf("Imported %d students from roster", result.Enrolled))
	return result, nil
}

func (s *enrollmentService) MyEnrollments(ctx context.Context, studentID uuid.UUID) ([]entity.ClassEnrollment, error) {
	return s.repo.FindActiveByStudent(ctx, studentID)
}

func (s *enrollmentService) checkClassOwner(ctx context.Context, actorID, classID uuid.UUID) error {
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
