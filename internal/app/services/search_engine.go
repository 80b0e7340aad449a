package services

import (
	"context"
	"strings"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
)

// Result caps
const (
	SearchLimit         = 20
	AdvancedSearchLimit = 30
)

// SearchEngine answers quick and advanced searches over the student collection.
// Substring matching scans the whole collection; the store has no
// case-insensitive substring query.
type SearchEngine struct {
	studentRepo *repositories.StudentRepository
}

// NewSearchEngine creates a new search engine
func NewSearchEngine(studentRepo *repositories.StudentRepository) *SearchEngine {
	return &SearchEngine{studentRepo: studentRepo}
}

// Search returns up to SearchLimit students whose targeted field contains
// query, ignoring case. The filter selects name, roll or class; anything else
// searches all three.
func (e *SearchEngine) Search(ctx context.Context, query string, filter models.SearchFilter) ([]models.StudentSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.StudentSummary{}, nil
	}

	students, err := e.studentRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return collect(students, SearchLimit, func(r models.StudentRecord) bool {
		return matchesQuery(r, query, filter)
	}), nil
}

// SearchPrefix runs a case-sensitive prefix query on roll number and name
// and merges both result lists, roll number matches first.
func (e *SearchEngine) SearchPrefix(ctx context.Context, query string, filter models.SearchFilter) ([]models.StudentSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.StudentSummary{}, nil
	}

	var fields []string
	switch filter {
	case models.SearchFilterRoll:
		fields = []string{models.FieldRollNo}
	case models.SearchFilterName:
		fields = []string{models.FieldStudentName}
	case models.SearchFilterClass:
		fields = []string{models.FieldClassSection}
	default:
		fields = []string{models.FieldRollNo, models.FieldStudentName}
	}

	var merged []models.ListedStudent
	for _, field := range fields {
		students, err := e.studentRepo.FindByPrefix(ctx, field, query, SearchLimit)
		if err != nil {
			return nil, err
		}
		merged = append(merged, students...)
	}

	return collect(merged, SearchLimit, func(models.StudentRecord) bool { return true }), nil
}

// Advanced returns up to AdvancedSearchLimit students satisfying every
// non-blank criterion.
func (e *SearchEngine) Advanced(ctx context.Context, criteria models.AdvancedCriteria) ([]models.StudentSummary, error) {
	students, err := e.studentRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return collect(students, AdvancedSearchLimit, func(r models.StudentRecord) bool {
		return matchesCriteria(r, criteria)
	}), nil
}

// collect keeps matching students in input order, drops repeated ids and
// stops at limit.
func collect(students []models.ListedStudent, limit int, match func(models.StudentRecord) bool) []models.StudentSummary {
	results := make([]models.StudentSummary, 0)
	seen := make(map[string]struct{})

	for _, s := range students {
		if len(results) == limit {
			break
		}
		if _, dup := seen[s.ID]; dup || !match(s.Record) {
			continue
		}
		seen[s.ID] = struct{}{}
		results = append(results, s.Summary())
	}
	return results
}

// matchesQuery expects query already lower-cased
func matchesQuery(r models.StudentRecord, query string, filter models.SearchFilter) bool {
	contains := func(field string) bool {
		return strings.Contains(strings.ToLower(r.Get(field)), query)
	}

	switch filter {
	case models.SearchFilterName:
		return contains(models.FieldStudentName)
	case models.SearchFilterRoll:
		return contains(models.FieldRollNo)
	case models.SearchFilterClass:
		return contains(models.FieldClassSection)
	default:
		return contains(models.FieldRollNo) ||
			contains(models.FieldStudentName) ||
			contains(models.FieldClassSection)
	}
}

func matchesCriteria(r models.StudentRecord, c models.AdvancedCriteria) bool {
	substring := []struct {
		want  string
		field string
	}{
		{c.Name, models.FieldStudentName},
		{c.RollNo, models.FieldRollNo},
		{c.ClassSection, models.FieldClassSection},
		{c.Category, models.FieldCategory},
		{c.Address, models.FieldAddress},
	}
	for _, s := range substring {
		if strings.TrimSpace(s.want) == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Get(s.field)), strings.ToLower(s.want)) {
			return false
		}
	}

	exact := []struct {
		want  string
		field string
	}{
		{c.Gender, models.FieldGender},
		{c.BloodGroup, models.FieldBloodGroup},
	}
	for _, e := range exact {
		if strings.TrimSpace(e.want) == "" {
			continue
		}
		if r.Get(e.field) != e.want {
			return false
		}
	}
	return true
}
