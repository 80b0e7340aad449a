package models

// Student record field keys as stored in the document store
const (
	FieldRegNo            = "regNo"
	FieldRollNo           = "rollNo"
	FieldClassSection     = "classSection"
	FieldStudentName      = "studentName"
	FieldFatherName       = "fatherName"
	FieldGender           = "gender"
	FieldDOB              = "dob"
	FieldEmail            = "email"
	FieldAddress          = "address"
	FieldStudentContact   = "studentContact"
	FieldParentNo         = "parentNo"
	FieldAadharNo         = "aadharNo"
	FieldBloodGroup       = "bloodGroup"
	FieldState            = "state"
	FieldDistrict         = "district"
	FieldReligion         = "religion"
	FieldCategory         = "category"
	FieldCaste            = "caste"
	FieldIncome           = "income"
	FieldPUCRollNo        = "pucRollNo"
	FieldPUCYear          = "pucYear"
	FieldPUCInstitute     = "pucInstitute"
	FieldPUCTotalMarks    = "pucTotalMarks"
	FieldPUCObtainedMarks = "pucObtainedMarks"
	FieldPUCPercentage    = "pucPercentage"
	FieldDiscipline       = "discipline1"
	FieldSecondLanguage   = "lang2"
	FieldYearOfAdmission  = "yearOfAdmission"
	FieldABCID            = "abcId"
	FieldMailID           = "mailId"
	FieldSerialNo         = "serialNo"
	FieldBarcode          = "barcode"
)

// UnassignedClass groups records without a class/section in listings
const UnassignedClass = "Unassigned"

// StudentRecord is a flat field/value mapping. It never holds empty values.
type StudentRecord map[string]string

// RollNo returns the roll number, which is also the storage key
func (r StudentRecord) RollNo() string { return r[FieldRollNo] }

// RegNo returns the registration number
func (r StudentRecord) RegNo() string { return r[FieldRegNo] }

// StudentName returns the student's name
func (r StudentRecord) StudentName() string { return r[FieldStudentName] }

// ClassSection returns the class/section
func (r StudentRecord) ClassSection() string { return r[FieldClassSection] }

// Get returns the value of any field, or "" when absent
func (r StudentRecord) Get(field string) string { return r[field] }

// ListedStudent is a record together with its storage id
type ListedStudent struct {
	ID     string
	Record StudentRecord
}

// Summary returns the short form used in search results
func (s ListedStudent) Summary() StudentSummary {
	return StudentSummary{
		ID:           s.ID,
		StudentName:  s.Record.StudentName(),
		RollNo:       s.Record.RollNo(),
		ClassSection: s.Record.ClassSection(),
	}
}

// StudentSummary is the search result entry
type StudentSummary struct {
	ID           string `json:"id" example:"R100"`
	StudentName  string `json:"studentName" example:"Asha Rao"`
	RollNo       string `json:"rollNo" example:"R100"`
	ClassSection string `json:"classSection" example:"10A"`
}

// ClassListing groups students by class/section. Classes keeps the order in
// which each class was first seen while enumerating the store.
type ClassListing struct {
	Classes []string
	ByClass map[string][]ListedStudent
}

// Total returns the number of students across all classes
func (l *ClassListing) Total() int {
	n := 0
	for _, students := range l.ByClass {
		n += len(students)
	}
	return n
}

// SearchFilter selects the field targeted by a quick search
type SearchFilter string

// Search filters. Any other value searches roll number, name and class together.
const (
	SearchFilterAll   SearchFilter = "all"
	SearchFilterName  SearchFilter = "name"
	SearchFilterRoll  SearchFilter = "roll"
	SearchFilterClass SearchFilter = "class"
)

// SearchMode selects the matching strategy of a quick search
type SearchMode string

const (
	SearchModeSubstring SearchMode = "substring"
	SearchModePrefix    SearchMode = "prefix"
)

// AdvancedCriteria are the optional conditions of an advanced search.
// Blank criteria are ignored.
type AdvancedCriteria struct {
	Name         string
	RollNo       string
	ClassSection string
	Address      string
	Category     string
	Gender       string
	BloodGroup   string
}
