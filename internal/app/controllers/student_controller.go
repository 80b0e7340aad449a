// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// Template names rendered by the controller
const (
	TemplateStudentForm       = "student_form.html"
	TemplateStudentManagement = "student_management.html"
	TemplateStudentUpdate     = "student_update.html"
)

// StudentController handles the intake form, management pages and the
// student JSON endpoints
type StudentController struct {
	studentService *services.StudentService
	storeDriver    string
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, storeDriver string) *StudentController {
	return &StudentController{
		studentService: studentService,
		storeDriver:    storeDriver,
	}
}

// ClassGroup is one class/section block of the management page
type ClassGroup struct {
	Name     string
	Students []models.ListedStudent
}

// Index renders the intake form
// @Summary Intake form
// @Description Renders the student intake form
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func (c *StudentController) Index(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, TemplateStudentForm, nil)
}

// SearchBarcode looks a student up by scanned barcode
// @Summary Barcode lookup
// @Description Finds the student whose roll number equals the scanned barcode
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.BarcodeRequest true "Scanned barcode"
// @Success 200 {object} map[string]string "Student record"
// @Failure 400 {object} dto.ErrorResponse "Barcode is required"
// @Failure 404 {object} dto.ErrorResponse "No student found"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /search_barcode [post]
func (c *StudentController) SearchBarcode(ctx *gin.Context) {
	var req dto.BarcodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	record, err := c.studentService.GetByBarcode(ctx.Request.Context(), req.Barcode)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, record)
}

// CheckDuplicate reports whether a roll or registration number is taken
// @Summary Duplicate check
// @Description Advisory check run by the intake form before submission. A roll number conflict takes precedence over a registration number conflict.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.DuplicateCheckRequest true "Identifiers to check"
// @Success 200 {object} dto.DuplicateCheckResponse
// @Failure 400 {object} dto.ErrorResponse "Roll number is required"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /check_duplicate [post]
func (c *StudentController) CheckDuplicate(ctx *gin.Context) {
	var req dto.DuplicateCheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	result, err := c.studentService.CheckDuplicate(ctx.Request.Context(), req.RollNo, req.RegNo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DuplicateCheckResponse{
		IsDuplicate: result.IsDuplicate,
		Message:     result.Message,
	})
}

// Submit creates a student from the intake form
// @Summary Create student
// @Description Stores a new student keyed by roll number. Empty fields are not persisted.
// @Tags students
// @Accept x-www-form-urlencoded
// @Produce json
// @Param rollNo formData string true "Roll number"
// @Param regNo formData string false "Registration number"
// @Param studentName formData string false "Student name"
// @Param classSection formData string false "Class/section"
// @Success 200 {object} dto.SubmitResponse
// @Failure 400 {object} dto.ErrorResponse "Missing roll number or invalid field"
// @Failure 409 {object} dto.ErrorResponse "Duplicate roll or registration number"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /submit [post]
func (c *StudentController) Submit(ctx *gin.Context) {
	var form dto.StudentForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	id, err := c.studentService.Submit(ctx.Request.Context(), form.Fields())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SubmitResponse{
		Message:   "Student data saved successfully!",
		StudentID: id,
	})
}

// Manage renders every student grouped by class/section
// @Summary Management page
// @Description Renders all students grouped by class/section
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /manage [get]
func (c *StudentController) Manage(ctx *gin.Context) {
	listing, err := c.studentService.ListGroupedByClass(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	groups := make([]ClassGroup, 0, len(listing.Classes))
	for _, class := range listing.Classes {
		groups = append(groups, ClassGroup{Name: class, Students: listing.ByClass[class]})
	}

	ctx.HTML(http.StatusOK, TemplateStudentManagement, gin.H{
		"Groups": groups,
		"Total":  listing.Total(),
	})
}

// SearchStudents runs the quick search
// @Summary Quick search
// @Description Case-insensitive substring search on name, roll number or class (at most 20 results). mode=prefix runs a case-sensitive prefix search instead.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.SearchRequest true "Search query"
// @Success 200 {object} dto.StudentListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /search_students [post]
func (c *StudentController) SearchStudents(ctx *gin.Context) {
	var req dto.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	students, err := c.studentService.Search(ctx.Request.Context(), req.Query,
		models.SearchFilter(req.Filter), models.SearchMode(req.Mode))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentListResponse{Students: students})
}

// AdvancedSearch runs a multi-criteria search
// @Summary Advanced search
// @Description Returns students matching every non-blank criterion (at most 30). Gender and blood group match exactly, the rest are case-insensitive substrings.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.AdvancedSearchRequest true "Search criteria"
// @Success 200 {object} dto.StudentListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /advanced_search [post]
func (c *StudentController) AdvancedSearch(ctx *gin.Context) {
	var req dto.AdvancedSearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	students, err := c.studentService.AdvancedSearch(ctx.Request.Context(), req.Criteria())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentListResponse{Students: students})
}

// GetStudentDetails returns one student record
// @Summary Get student
// @Tags students
// @Produce json
// @Param id path string true "Student ID (roll number)"
// @Success 200 {object} map[string]string "Student record"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /get_student_details/{id} [get]
func (c *StudentController) GetStudentDetails(ctx *gin.Context) {
	record, err := c.studentService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, record)
}

// EditStudentPage renders the edit form
// @Summary Edit page
// @Tags pages
// @Produce html
// @Param id path string true "Student ID (roll number)"
// @Success 200 {string} string "HTML page"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /edit_student/{id} [get]
func (c *StudentController) EditStudentPage(ctx *gin.Context) {
	id := ctx.Param("id")
	record, err := c.studentService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, TemplateStudentUpdate, gin.H{
		"ID":      id,
		"Student": record,
	})
}

// UpdateStudent merges the edit form into an existing student
// @Summary Update student
// @Description Partial update; empty form fields leave the stored value unchanged. The roll number cannot be changed.
// @Tags students
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path string true "Student ID (roll number)"
// @Param studentName formData string false "Student name"
// @Param regNo formData string false "Registration number"
// @Success 200 {object} dto.UpdateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid field or roll number change"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Registration number already in use"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /edit_student/{id} [post]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id := ctx.Param("id")

	var form dto.StudentForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	if err := c.studentService.Update(ctx.Request.Context(), id, form.Fields()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UpdateResponse{
		Success:   true,
		Message:   "Student data updated successfully!",
		StudentID: id,
	})
}

// DeleteStudent removes a student
// @Summary Delete student
// @Tags students
// @Produce json
// @Param id path string true "Student ID (roll number)"
// @Success 200 {object} dto.DeleteResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Database error"
// @Router /delete_student/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	if err := c.studentService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DeleteResponse{
		Success: true,
		Message: "Student deleted successfully",
	})
}

// Health pings the document store
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.ErrorResponse "Store unreachable"
// @Router /health [get]
func (c *StudentController) Health(ctx *gin.Context) {
	if err := c.studentService.Ping(ctx.Request.Context()); err != nil {
		logger.FromContext(ctx.Request.Context()).Error().Err(err).Msg("Health check failed")
		detail := dto.NewErrorDetail(dto.ErrorCodeStoreError, apperrors.PublicMessage(err)).
			WithSeverity(dto.ErrorSeverityCritical)
		middleware.AbortWithError(ctx, http.StatusServiceUnavailable, detail)
		return
	}

	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Store: c.storeDriver})
}
