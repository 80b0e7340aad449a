// Package web holds the embedded HTML templates of the intake and
// management pages.
package web

import (
	"embed"
	"html/template"
	"net/url"

	"github.com/yigit/studentrecords/internal/app/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// FormField describes one input of the intake and edit forms
type FormField struct {
	Name     string
	Label    string
	Type     string
	Required bool
}

// FormFields lists the student form inputs in display order
var FormFields = []FormField{
	{Name: models.FieldRollNo, Label: "Roll Number", Type: "text", Required: true},
	{Name: models.FieldRegNo, Label: "Registration Number", Type: "text"},
	{Name: models.FieldSerialNo, Label: "Serial Number", Type: "text"},
	{Name: models.FieldClassSection, Label: "Class / Section", Type: "text"},
	{Name: models.FieldStudentName, Label: "Student Name", Type: "text"},
	{Name: models.FieldFatherName, Label: "Father's Name", Type: "text"},
	{Name: models.FieldGender, Label: "Gender", Type: "text"},
	{Name: models.FieldDOB, Label: "Date of Birth", Type: "date"},
	{Name: models.FieldEmail, Label: "Email", Type: "email"},
	{Name: models.FieldMailID, Label: "College Mail ID", Type: "email"},
	{Name: models.FieldAddress, Label: "Address", Type: "text"},
	{Name: models.FieldStudentContact, Label: "Student Contact", Type: "tel"},
	{Name: models.FieldParentNo, Label: "Parent Contact", Type: "tel"},
	{Name: models.FieldAadharNo, Label: "Aadhar Number", Type: "text"},
	{Name: models.FieldBloodGroup, Label: "Blood Group", Type: "text"},
	{Name: models.FieldState, Label: "State", Type: "text"},
	{Name: models.FieldDistrict, Label: "District", Type: "text"},
	{Name: models.FieldReligion, Label: "Religion", Type: "text"},
	{Name: models.FieldCategory, Label: "Category", Type: "text"},
	{Name: models.FieldCaste, Label: "Caste", Type: "text"},
	{Name: models.FieldIncome, Label: "Family Income", Type: "text"},
	{Name: models.FieldPUCRollNo, Label: "PUC Roll Number", Type: "text"},
	{Name: models.FieldPUCYear, Label: "PUC Year", Type: "text"},
	{Name: models.FieldPUCInstitute, Label: "PUC Institute", Type: "text"},
	{Name: models.FieldPUCTotalMarks, Label: "PUC Total Marks", Type: "text"},
	{Name: models.FieldPUCObtainedMarks, Label: "PUC Obtained Marks", Type: "text"},
	{Name: models.FieldPUCPercentage, Label: "PUC Percentage", Type: "text"},
	{Name: models.FieldDiscipline, Label: "Discipline", Type: "text"},
	{Name: models.FieldSecondLanguage, Label: "Second Language", Type: "text"},
	{Name: models.FieldYearOfAdmission, Label: "Year of Admission", Type: "text"},
	{Name: models.FieldABCID, Label: "ABC ID", Type: "text"},
	{Name: models.FieldBarcode, Label: "Barcode", Type: "text"},
}

// Templates parses the embedded page templates. Each template is named after
// its file, e.g. "student_form.html".
func Templates() (*template.Template, error) {
	funcs := template.FuncMap{
		"formFields": func() []FormField { return FormFields },
		// ids may contain '#' or '?', which would cut the link short
		"pathEscape": url.PathEscape,
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
