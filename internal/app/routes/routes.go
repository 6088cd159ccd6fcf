package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/controllers"
	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl *controllers.Controllers,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.Refresh)
	}

	// Scheduled maintenance hook, guarded by the shared cron secret
	cron := v1.Group("/cron")
	cron.Use(authMiddleware.CronSecret())
	{
		cron.POST("/update-exam-status", ctrl.Exams.SweepStatuses)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)

		// Read access for any authenticated role
		authenticated.GET("/exams", ctrl.Exams.ListExams)
		authenticated.GET("/exams/:id", ctrl.Exams.GetExam)
		authenticated.GET("/exams/:id/stations", ctrl.Exams.ListStations)
		authenticated.GET("/stations/:stationId/questions", ctrl.Exams.ListQuestions)
		authenticated.GET("/questions/:questionId/options", ctrl.Exams.ListOptions)
		authenticated.GET("/hospitals", ctrl.Hospitals.ListHospitals)
		authenticated.GET("/hospitals/:id", ctrl.Hospitals.GetHospital)
		authenticated.GET("/groups", ctrl.Groups.ListGroups)
		authenticated.GET("/groups/:id", ctrl.Groups.GetGroup)
		authenticated.GET("/groups/:id/students", ctrl.Groups.ListGroupStudents)
		authenticated.GET("/students/:id", ctrl.Students.GetStudent)
		authenticated.GET("/student-exams/:id", ctrl.Assignments.GetAssignment)

		// Evaluator routes - scoring workflow for assigned exams
		evaluator := authenticated.Group("/evaluator")
		evaluator.Use(authMiddleware.RoleRequired(models.RoleEvaluator, models.RoleAdmin))
		{
			evaluator.GET("/assignments", ctrl.Evaluations.ListMyAssignments)
			evaluator.POST("/answers/batch", ctrl.Evaluations.RecordAnswers)
			evaluator.GET("/results/:id", ctrl.Evaluations.GetResults)
		}

		// Assignment workflow actions (iniciar / finalizar)
		evaluatorExams := authenticated.Group("/evaluator-exams")
		evaluatorExams.Use(authMiddleware.RoleRequired(models.RoleEvaluator, models.RoleAdmin))
		{
			evaluatorExams.PUT("/:id", ctrl.Evaluations.ApplyAction)
		}

		// Admin routes - catalog and assignment management
		admin := authenticated.Group("")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			// Exam definition tree
			exams := admin.Group("/exams")
			{
				exams.POST("", ctrl.Exams.CreateExam)
				exams.PUT("/:id", ctrl.Exams.UpdateExam)
				exams.DELETE("/:id", ctrl.Exams.DeleteExam)
				exams.POST("/:id/duplicate", ctrl.Exams.DuplicateExam)
				exams.POST("/:id/stations", ctrl.Exams.CreateStation)
				exams.GET("/:id/assignments", ctrl.Assignments.ListByExam)
			}

			stations := admin.Group("/stations")
			{
				stations.PUT("/:stationId", ctrl.Exams.UpdateStation)
				stations.DELETE("/:stationId", ctrl.Exams.DeleteStation)
				stations.POST("/:stationId/questions", ctrl.Exams.CreateQuestion)
			}

			questions := admin.Group("/questions")
			{
				questions.PUT("/:questionId", ctrl.Exams.UpdateQuestion)
				questions.DELETE("/:questionId", ctrl.Exams.DeleteQuestion)
				questions.POST("/:questionId/options", ctrl.Exams.CreateOption)
			}

			options := admin.Group("/options")
			{
				options.PUT("/:optionId", ctrl.Exams.UpdateOption)
				options.DELETE("/:optionId", ctrl.Exams.DeleteOption)
			}

			// Students and group membership
			students := admin.Group("/students")
			{
				students.POST("", ctrl.Students.CreateStudent)
				students.GET("", ctrl.Students.ListStudents)
				students.PUT("/:id", ctrl.Students.UpdateStudent)
				students.DELETE("/:id", ctrl.Students.DeleteStudent)
				students.POST("/:id/groups/:groupId", ctrl.Students.JoinGroup)
				students.DELETE("/:id/groups/:groupId", ctrl.Students.LeaveGroup)
				students.GET("/:id/exams", ctrl.Assignments.ListByStudent)
			}

			// Evaluators
			evaluators := admin.Group("/evaluators")
			{
				evaluators.POST("", ctrl.Evaluators.CreateEvaluator)
				evaluators.GET("", ctrl.Evaluators.ListEvaluators)
				evaluators.GET("/:id", ctrl.Evaluators.GetEvaluator)
				evaluators.PUT("/:id", ctrl.Evaluators.UpdateEvaluator)
				evaluators.DELETE("/:id", ctrl.Evaluators.DeleteEvaluator)
			}

			// Hospitals
			hospitals := admin.Group("/hospitals")
			{
				hospitals.POST("", ctrl.Hospitals.CreateHospital)
				hospitals.PUT("/:id", ctrl.Hospitals.UpdateHospital)
				hospitals.DELETE("/:id", ctrl.Hospitals.DeleteHospital)
			}

			// Groups
			groups := admin.Group("/groups")
			{
				groups.POST("", ctrl.Groups.CreateGroup)
				groups.PUT("/:id", ctrl.Groups.UpdateGroup)
				groups.DELETE("/:id", ctrl.Groups.DeleteGroup)
			}

			// Student-exam assignments
			studentExams := admin.Group("/student-exams")
			{
				studentExams.POST("", ctrl.Assignments.AssignExam)
				studentExams.DELETE("/:id", ctrl.Assignments.Unassign)
			}
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}
