package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"anoa.com/akademia/internal/entity"
	"anoa.com/akademia/internal/modules/attendance/dto"
	"anoa.com/akademia/pkg/apperror"
	"anoa.com/akademia/pkg/cache"
)

type fakeAttendanceRepo struct {
	records map[uuid.UUID]*entity.Attendance
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[uuid.UUID]*entity.Attendance{}}
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record *entity.Attendance) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	r, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["status"]; ok {
		r.Status = v.(string)
	}
	if v, ok := fields["notes"]; ok {
		notes := v.(string)
		r.Notes = &notes
	}
	return nil
}

func (f *fakeAttendanceRepo) FindByClassStudentDate(ctx context.Context, classID, studentID uuid.UUID, date time.Time) (*entity.Attendance, error) {
	for _, r := range f.records {
		if r.ClassID == classID && r.StudentID == studentID && r.Date.Equal(date) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) FindByClass(ctx context.Context, classID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	var out []entity.Attendance
	for _, r := range f.records {
		if r.ClassID != classID {
			continue
		}
		if from != nil && r.Date.Before(*from) {
			continue
		}
		if to != nil && r.Date.After(*to) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeAttendanceRepo) FindByStudent(ctx context.Context, studentID uuid.UUID, from, to *time.Time) ([]entity.Attendance, error) {
	var out []entity.Attendance
	for _, r := range f.records {
		if r.StudentID == studentID {
			out = append(out, *r)
		}
	}
	return out, nil
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
	svc       AttendanceService
	repo      *fakeAttendanceRepo
	notifier  *fakeNotifier
	teacherID uuid.UUID
	classID   uuid.UUID
}

func newFixture() *fixture {
	teacherID := uuid.New()
	classID := uuid.New()

	repo := newFakeAttendanceRepo()
	classes := &fakeClassRepo{classes: map[uuid.UUID]*entity.Class{
		classID: {ID: classID, TeacherID: teacherID},
	}}
	notifier := &fakeNotifier{}

	return &fixture{
		svc:       NewAttendanceService(repo, classes, cache.New(nil, time.Minute), notifier),
		repo:      repo,
		notifier:  notifier,
		teacherID: teacherID,
		classID:   classID,
	}
}

func TestRecordAttendanceUpsertsPerDay(t *testing.T) {
	fx := newFixture()
	studentID := uuid.New()

	first, err := fx.svc.RecordAttendance(context.Background(), fx.teacherID, fx.classID, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: studentID.String(), Status: entity.AttendancePresent}},
	})
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if first.Recorded != 1 || first.Updated != 0 {
		t.Errorf("first record = %+v, want 1 recorded / 0 updated", first)
	}

	second, err := fx.svc.RecordAttendance(context.Background(), fx.teacherID, fx.classID, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: studentID.String(), Status: entity.AttendanceLate}},
	})
	if err != nil {
		t.Fatalf("second record failed: %v", err)
	}
	if second.Recorded != 0 || second.Updated != 1 {
		t.Errorf("second record = %+v, want 0 recorded / 1 updated", second)
	}

	if len(fx.repo.records) != 1 {
		t.Fatalf("one (class, student, date) must hold one row, have %d", len(fx.repo.records))
	}
	for _, r := range fx.repo.records {
		if r.Status != entity.AttendanceLate {
			t.Errorf("status = %q, want %q after update", r.Status, entity.AttendanceLate)
		}
	}
}

func TestRecordAttendanceDifferentDaysAddRows(t *testing.T) {
	fx := newFixture()
	studentID := uuid.New()

	for _, date := range []string{"2026-03-02", "2026-03-03"} {
		if _, err := fx.svc.RecordAttendance(context.Background(), fx.teacherID, fx.classID, dto.RecordAttendanceRequest{
			Date:    date,
			Entries: []dto.AttendanceEntry{{StudentID: studentID.String(), Status: entity.AttendancePresent}},
		}); err != nil {
			t.Fatalf("record for %s failed: %v", date, err)
		}
	}

	if len(fx.repo.records) != 2 {
		t.Errorf("two days must produce two rows, have %d", len(fx.repo.records))
	}
}

func TestRecordAttendanceRejectsBadDate(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.RecordAttendance(context.Background(), fx.teacherID, fx.classID, dto.RecordAttendanceRequest{
		Date:    "03/02/2026",
		Entries: []dto.AttendanceEntry{{StudentID: uuid.New().String(), Status: entity.AttendancePresent}},
	})
	if !errors.Is(err, apperror.ErrPrecondition) {
		t.Fatalf("expected precondition error for bad date, got %v", err)
	}
	if len(fx.repo.records) != 0 {
		t.Error("rejected request must not create rows")
	}
}

func TestRecordAttendanceRequiresClassOwnership(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.RecordAttendance(context.Background(), uuid.New(), fx.classID, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: uuid.New().String(), Status: entity.AttendancePresent}},
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}

func TestExportSheetWritesWorkbook(t *testing.T) {
	fx := newFixture()
	studentID := uuid.New()

	if _, err := fx.svc.RecordAttendance(context.Background(), fx.teacherID, fx.classID, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: studentID.String(), Status: entity.AttendanceAbsent}},
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	var buf bytes.Buffer
	if err := fx.svc.ExportSheet(context.Background(), fx.teacherID, fx.classID, &buf); err != nil {
		t.Fatalf("ExportSheet failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("exported bytes are not a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("reading exported sheet failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one record, got %d rows", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][3] != "Status" {
		t.Errorf("unexpected header row %v", rows[0])
	}
	if rows[1][0] != "2026-03-02" || rows[1][3] != entity.AttendanceAbsent {
		t.Errorf("unexpected record row %v", rows[1])
	}
}

func TestListByClassRequiresClassOwnership(t *testing.T) {
	fx := newFixture()

	if _, err := fx.svc.RecordAttendance(context.Background(), fx.teacherID, fx.classID, dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: uuid.New().String(), Status: entity.AttendancePresent}},
	}); err != nil {
		t.Fatalf("seed attendance failed: %v", err)
	}

	if _, err := fx.svc.ListByClass(context.Background(), uuid.New(), fx.classID, nil, nil); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("non-owner attendance read must be forbidden, got %v", err)
	}

	records, err := fx.svc.ListByClass(context.Background(), fx.teacherID, fx.classID, nil, nil)
	if err != nil {
		t.Fatalf("owner attendance read failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("owner must still see the records, got %d", len(records))
	}
}
