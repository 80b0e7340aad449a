package dto

import "github.com/yigit/studentrecords/internal/app/models"

// StudentForm is the intake and edit form. Every field is optional at the
// binding level; the roll number requirement is enforced by the service so
// that a missing roll number is reported as a missing required field.
type StudentForm struct {
	RegNo            string `form:"regNo" json:"regNo"`
	RollNo           string `form:"rollNo" json:"rollNo" binding:"omitempty,docid"`
	ClassSection     string `form:"classSection" json:"classSection"`
	StudentName      string `form:"studentName" json:"studentName" binding:"max=200"`
	FatherName       string `form:"fatherName" json:"fatherName" binding:"max=200"`
	Gender           string `form:"gender" json:"gender"`
	DOB              string `form:"dob" json:"dob" binding:"omitempty,isodate"`
	Email            string `form:"email" json:"email" binding:"omitempty,email"`
	Address          string `form:"address" json:"address"`
	StudentContact   string `form:"studentContact" json:"studentContact" binding:"omitempty,phone"`
	ParentNo         string `form:"parentNo" json:"parentNo" binding:"omitempty,phone"`
	AadharNo         string `form:"aadharNo" json:"aadharNo"`
	BloodGroup       string `form:"bloodGroup" json:"bloodGroup"`
	State            string `form:"state" json:"state"`
	District         string `form:"district" json:"district"`
	Religion         string `form:"religion" json:"religion"`
	Category         string `form:"category" json:"category"`
	Caste            string `form:"caste" json:"caste"`
	Income           string `form:"income" json:"income" binding:"omitempty,decimal"`
	PUCRollNo        string `form:"pucRollNo" json:"pucRollNo"`
	PUCYear          string `form:"pucYear" json:"pucYear" binding:"omitempty,year"`
	PUCInstitute     string `form:"pucInstitute" json:"pucInstitute"`
	PUCTotalMarks    string `form:"pucTotalMarks" json:"pucTotalMarks" binding:"omitempty,decimal"`
	PUCObtainedMarks string `form:"pucObtainedMarks" json:"pucObtainedMarks" binding:"omitempty,decimal"`
	PUCPercentage    string `form:"pucPercentage" json:"pucPercentage" binding:"omitempty,decimal"`
	Discipline1      string `form:"discipline1" json:"discipline1"`
	Lang2            string `form:"lang2" json:"lang2"`
	YearOfAdmission  string `form:"yearOfAdmission" json:"yearOfAdmission" binding:"omitempty,year"`
	ABCID            string `form:"abcId" json:"abcId"`
	MailID           string `form:"mailId" json:"mailId" binding:"omitempty,email"`
	SerialNo         string `form:"serialNo" json:"serialNo" binding:"omitempty,numeric"`
	Barcode          string `form:"barcode" json:"barcode"`
}

// Fields returns the raw form as a field map keyed by storage field name.
// Empty values are kept; cleaning happens in the record validator.
func (f *StudentForm) Fields() map[string]string {
	return map[string]string{
		models.FieldRegNo:            f.RegNo,
		models.FieldRollNo:           f.RollNo,
		models.FieldClassSection:     f.ClassSection,
		models.FieldStudentName:      f.StudentName,
		models.FieldFatherName:       f.FatherName,
		models.FieldGender:           f.Gender,
		models.FieldDOB:              f.DOB,
		models.FieldEmail:            f.Email,
		models.FieldAddress:          f.Address,
		models.FieldStudentContact:   f.StudentContact,
		models.FieldParentNo:         f.ParentNo,
		models.FieldAadharNo:         f.AadharNo,
		models.FieldBloodGroup:       f.BloodGroup,
		models.FieldState:            f.State,
		models.FieldDistrict:         f.District,
		models.FieldReligion:         f.Religion,
		models.FieldCategory:         f.Category,
		models.FieldCaste:            f.Caste,
		models.FieldIncome:           f.Income,
		models.FieldPUCRollNo:        f.PUCRollNo,
		models.FieldPUCYear:          f.PUCYear,
		models.FieldPUCInstitute:     f.PUCInstitute,
		models.FieldPUCTotalMarks:    f.PUCTotalMarks,
		models.FieldPUCObtainedMarks: f.PUCObtainedMarks,
		models.FieldPUCPercentage:    f.PUCPercentage,
		models.FieldDiscipline:       f.Discipline1,
		models.FieldSecondLanguage:   f.Lang2,
		models.FieldYearOfAdmission:  f.YearOfAdmission,
		models.FieldABCID:            f.ABCID,
		models.FieldMailID:           f.MailID,
		models.FieldSerialNo:         f.SerialNo,
		models.FieldBarcode:          f.Barcode,
	}
}

// BarcodeRequest looks a student up by scanned barcode (the roll number)
type BarcodeRequest struct {
	Barcode string `json:"barcode" example:"R100"`
}

// DuplicateCheckRequest is the advisory duplicate check input
type DuplicateCheckRequest struct {
	RollNo string `json:"rollNo" example:"R100"`
	RegNo  string `json:"regNo,omitempty" example:"REG-2024-001"`
}

// SearchRequest is the quick search input
type SearchRequest struct {
	Query  string `json:"query" example:"asha"`
	Filter string `json:"filter,omitempty" example:"name" enums:"all,name,roll,class"`
	Mode   string `json:"mode,omitempty" binding:"omitempty,oneof=substring prefix" example:"substring" enums:"substring,prefix"`
}

// AdvancedSearchRequest lists the criteria of an advanced search. Blank
// criteria are ignored.
type AdvancedSearchRequest struct {
	Name         string `json:"name,omitempty" example:"asha"`
	RollNo       string `json:"rollNo,omitempty" example:"R1"`
	ClassSection string `json:"classSection,omitempty" example:"10"`
	Gender       string `json:"gender,omitempty" example:"F"`
	BloodGroup   string `json:"bloodGroup,omitempty" example:"O+"`
	Category     string `json:"category,omitempty" example:"GM"`
	Address      string `json:"address,omitempty" example:"Udupi"`
}

// Criteria converts the request to search criteria
func (r *AdvancedSearchRequest) Criteria() models.AdvancedCriteria {
	return models.AdvancedCriteria{
		Name:         r.Name,
		RollNo:       r.RollNo,
		ClassSection: r.ClassSection,
		Address:      r.Address,
		Category:     r.Category,
		Gender:       r.Gender,
		BloodGroup:   r.BloodGroup,
	}
}

// DuplicateCheckResponse is the advisory duplicate check result
type DuplicateCheckResponse struct {
	IsDuplicate bool   `json:"isDuplicate" example:"true"`
	Message     string `json:"message" example:"Student with Roll Number R100 already exists!"`
}

// SubmitResponse is returned after a student is created
type SubmitResponse struct {
	Message   string `json:"message" example:"Student data saved successfully!"`
	StudentID string `json:"studentId" example:"R100"`
}

// UpdateResponse is returned after a student is updated
type UpdateResponse struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"Student data updated successfully!"`
	StudentID string `json:"studentId" example:"R100"`
}

// DeleteResponse is returned after a student is deleted
type DeleteResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Student deleted successfully"`
}

// StudentListResponse wraps search results
type StudentListResponse struct {
	Students []models.StudentSummary `json:"students"`
}

// HealthResponse reports process and store health
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store" example:"sqlite"`
}
