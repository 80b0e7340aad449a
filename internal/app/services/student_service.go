package services

import (
	"context"
	"errors"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// EventRecorder receives student lifecycle events
type EventRecorder interface {
	IncStudentEvent(event string)
}

// Student events
const (
	EventCreated           = "created"
	EventUpdated           = "updated"
	EventDeleted           = "deleted"
	EventDuplicateRejected = "duplicate_rejected"
)

// StudentService handles student record operations
type StudentService struct {
	studentRepo *repositories.StudentRepository
	checker     *DuplicateChecker
	search      *SearchEngine
	events      EventRecorder
}

// NewStudentService creates a new student service. events may be nil.
func NewStudentService(studentRepo *repositories.StudentRepository, events EventRecorder) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		checker:     NewDuplicateChecker(studentRepo),
		search:      NewSearchEngine(studentRepo),
		events:      events,
	}
}

// Submit validates and stores a new student and returns its id (the roll
// number). The duplicate check runs first so conflicts are reported with the
// usual precedence; the store's create-if-absent closes the remaining window
// between check and write.
func (s *StudentService) Submit(ctx context.Context, raw map[string]string) (string, error) {
	record, err := ValidateRecord(raw)
	if err != nil {
		return "", err
	}

	dup, err := s.checker.Check(ctx, record.RollNo(), record.RegNo())
	if err != nil {
		return "", err
	}
	if dup.IsDuplicate {
		s.record(EventDuplicateRejected)
		return "", dup.Err()
	}

	if err := s.studentRepo.Create(ctx, record); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateConflict) {
			s.record(EventDuplicateRejected)
		}
		return "", err
	}

	s.record(EventCreated)
	logger.FromContext(ctx).Info().Str("roll_no", record.RollNo()).Msg("New student data saved")
	return record.RollNo(), nil
}

// CheckDuplicate is the advisory check run by the intake form
func (s *StudentService) CheckDuplicate(ctx context.Context, rollNo, regNo string) (*DuplicateResult, error) {
	return s.checker.Check(ctx, rollNo, regNo)
}

// GetByBarcode finds the student whose roll number equals the scanned code
func (s *StudentService) GetByBarcode(ctx context.Context, code string) (models.StudentRecord, error) {
	if code == "" {
		return nil, apperrors.NewBadRequestError("Barcode is required")
	}

	student, found, err := s.studentRepo.FindOneBy(ctx, models.FieldRollNo, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewStudentNotFoundError("No student found with Roll Number: " + code)
	}
	return student.Record, nil
}

// GetByID fetches a student by id
func (s *StudentService) GetByID(ctx context.Context, id string) (models.StudentRecord, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// Update merges the non-empty fields of raw into an existing student. The
// roll number is the storage key and cannot be changed.
func (s *StudentService) Update(ctx context.Context, id string, raw map[string]string) error {
	fields := CleanRecord(raw)

	if rollNo := fields.RollNo(); rollNo != "" && rollNo != id {
		return &apperrors.CustomError{
			Err:     apperrors.ErrBadRequest,
			Message: "Roll number cannot be changed",
			Field:   models.FieldRollNo,
		}
	}

	if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
		return err
	}

	if len(fields) == 0 {
		return nil
	}

	if err := s.studentRepo.Update(ctx, id, fields); err != nil {
		return err
	}

	s.record(EventUpdated)
	logger.FromContext(ctx).Info().Str("student_id", id).Int("fields", len(fields)).Msg("Student updated")
	return nil
}

// Delete removes a student
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(EventDeleted)
	logger.FromContext(ctx).Info().Str("student_id", id).Msg("Student deleted")
	return nil
}

// ListGroupedByClass returns every student grouped by class/section.
// Students without one are listed under "Unassigned".
func (s *StudentService) ListGroupedByClass(ctx context.Context) (*models.ClassListing, error) {
	students, err := s.studentRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	listing := &models.ClassListing{ByClass: make(map[string][]models.ListedStudent)}
	for _, student := range students {
		class := student.Record.ClassSection()
		if class == "" {
			class = models.UnassignedClass
		}
		if _, ok := listing.ByClass[class]; !ok {
			listing.Classes = append(listing.Classes, class)
		}
		listing.ByClass[class] = append(listing.ByClass[class], student)
	}
	return listing, nil
}

// Search runs a quick search in the requested mode
func (s *StudentService) Search(ctx context.Context, query string, filter models.SearchFilter, mode models.SearchMode) ([]models.StudentSummary, error) {
	if mode == models.SearchModePrefix {
		return s.search.SearchPrefix(ctx, query, filter)
	}
	return s.search.Search(ctx, query, filter)
}

// AdvancedSearch runs a multi-criteria search
func (s *StudentService) AdvancedSearch(ctx context.Context, criteria models.AdvancedCriteria) ([]models.StudentSummary, error) {
	return s.search.Advanced(ctx, criteria)
}

// Ping checks that the store is reachable
func (s *StudentService) Ping(ctx context.Context) error {
	return s.studentRepo.Ping(ctx)
}

func (s *StudentService) record(event string) {
	if s.events != nil {
		s.events.IncStudentEvent(event)
	}
}
