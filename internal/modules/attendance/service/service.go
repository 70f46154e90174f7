package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/attendance/dto"
	"anoa.com/akademia/internal/modules/attendance/repository"
	classRepo "anoa.com/akademia/internal/modules/class/repository"
	notifService "anoa.com/akademia/internal/modules/notification/service"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/cache"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type AttendanceService interface {
	RecordAttendance(ctx context.Context, actorID, classID uuid.UUID, req dto.RecordAttendanceRequest) (*dto.RecordAttendanceResult, error)
	ListByClass(ctx context.Context, actorID, classID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error)
	MyAttendance(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error)
	ExportSheet(ctx context.Context, actorID, classID uuid.UUID, w io.Writer) error
}

type attendanceService struct {
	repo     repository.AttendanceRepository
	classes  classRepo.ClassRepository
	cache    *cache.QueryCache
	notifier notifService.Notifier
}

func NewAttendanceService(
	repo repository.AttendanceRepository,
	classes classRepo.ClassRepository,
	queryCache *cache.QueryCache,
	notifier notifService.Notifier,
) AttendanceService {
	return &attendanceService{
		repo:     repo,
		classes:  classes,
		cache:    queryCache,
		notifier: notifier,
	}
}

func attendanceKey(classID uuid.UUID) cache.Key {
	return cache.NewKey(cache.EntityAttendance, classID.String())
}

// RecordAttendance upserts one row per (class, student, date): a day already
// recorded for a student is updated in place rather than duplicated.
func (s *attendanceService) RecordAttendance(ctx context.Context, actorID, classID uuid.UUID, req dto.RecordAttendanceRequest) (*dto.RecordAttendanceResult, error) {
	if classID == uuid.Nil {
		return nil, apperror.Precondition("no class selected")
	}

	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperror.Precondition("date must be formatted as YYYY-MM-DD")
	}

	result := &dto.RecordAttendanceResult{}
	for _, entry := range req.Entries {
		studentID, err := uuid.Parse(entry.StudentID)
		if err != nil {
			return nil, apperror.Precondition("invalid student id")
		}

		existing, err := s.repo.FindByClassStudentDate(ctx, classID, studentID, date)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if existing == nil {
			record := &entity.Attendance{
				ClassID:    classID,
				StudentID:  studentID,
				Date:       date,
				Status:     entry.Status,
				Notes:      entry.Notes,
				RecordedBy: &actorID,
			}
			if err := s.repo.Create(ctx, record); err != nil {
				s.notifier.Error(ctx, actorID, cache.EntityAttendance, "Failed to record attendance: "+err.Error())
				return nil, err
			}
			result.Recorded++
			continue
		}

		fields := map[string]any{
			"status":      entry.Status,
			"recorded_by": actorID,
		}
		if entry.Notes != nil {
			fields["notes"] = *entry.Notes
		}
		if err := s.repo.Update(ctx, existing.ID, fields); err != nil {
			s.notifier.Error(ctx, actorID, cache.EntityAttendance, "Failed to update attendance: "+err.Error())
			return nil, err
		}
		result.Updated++
	}

	_ = s.cache.Invalidate(ctx, attendanceKey(classID))
	s.notifier.Success(ctx, actorID, cache.EntityAttendance, classID,
		fmt.Sprintf("Attendance recorded for %d students", len(req.Entries)))
	return result, nil
}

func (s *attendanceService) ListByClass(ctx context.Context, actorID, classID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return nil, err
	}

	// Date-filtered reads bypass the cache; only the unfiltered roster view
	// is cached under the class scope.
	if from == nil && to == nil {
		key := attendanceKey(classID)
		var cached []entity.Attendance
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}

		records, err := s.repo.FindByClass(ctx, classID, nil, nil)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, key, records)
		return records, nil
	}

	return s.repo.FindByClass(ctx, classID, from, to)
}

func (s *attendanceService) MyAttendance(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	return s.repo.FindByStudent(ctx, studentID, from, to)
}

// ExportSheet writes the class's full attendance history as an .xlsx sheet:
// one row per record, newest first.
func (s *attendanceService) ExportSheet(ctx context.Context, actorID, classID uuid.UUID, w io.Writer) error {
	if err := s.checkClassOwner(ctx, actorID, classID); err != nil {
		return err
	}

	records, err := s.repo.FindByClass(ctx, classID, nil, nil)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Date", "Student", "Email", "Status", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, record := range records {
		row := i + 2
		name, email := "", ""
		if record.Student != nil {
			name = record.Student.FullName
			email = record.Student.Email
		}
		notes := ""
		if record.Notes != nil {
			notes = *record.Notes
		}
		values := []any{record.Date.Format("2006-01-02"), name, email, record.Status, notes}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f.Write(w)
}

func (s *attendanceService) checkClassOwner(ctx context.Context, actorID, classID uuid.UUID) error {
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
