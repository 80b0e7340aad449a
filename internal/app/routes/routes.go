package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/controllers"
	"github.com/yigit/studentrecords/internal/pkg/metrics"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, studentController *controllers.StudentController) {
	// Pages
	router.GET("/", studentController.Index)
	router.GET("/manage", studentController.Manage)

	// Intake endpoints
	router.POST("/search_barcode", studentController.SearchBarcode)
	router.POST("/check_duplicate", studentController.CheckDuplicate)
	router.POST("/submit", studentController.Submit)

	// Search
	router.POST("/search_students", studentController.SearchStudents)
	router.POST("/advanced_search", studentController.AdvancedSearch)

	// Single student
	router.GET("/get_student_details/:id", studentController.GetStudentDetails)
	router.GET("/edit_student/:id", studentController.EditStudentPage)
	router.POST("/edit_student/:id", studentController.UpdateStudent)
	router.DELETE("/delete_student/:id", studentController.DeleteStudent)

	router.GET("/health", studentController.Health)
}

// SetupMetrics exposes the prometheus registry at path
func SetupMetrics(router *gin.Engine, m *metrics.Metrics, path string) {
	router.GET(path, gin.WrapH(m.Handler()))
}
