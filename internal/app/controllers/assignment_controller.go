package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/services"
	"github.com/ecoehub/ecoe-backend/internal/middleware"
)

// AssignmentController handles student-exam assignment endpoints
type AssignmentController struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService *services.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// AssignExam links a student to an exam
// @Summary Assign a student to an exam
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignExamRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=models.StudentExam}
// @Failure 409 {object} dto.APIResponse
// @Router /student-exams [post]
func (c *AssignmentController) AssignExam(ctx *gin.Context) {
	var req dto.AssignExamRequest
	if !bindJSON(ctx, &req) {
		return
	}

	assignment, err := c.assignmentService.AssignExam(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(assignment, "Student assigned to exam"))
}

// GetAssignment retrieves one assignment
// @Summary Get an assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentExam}
// @Failure 404 {object} dto.APIResponse
// @Router /student-exams/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	assignment, err := c.assignmentService.GetAssignment(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignment, ""))
}

// ListByStudent lists a student's assignments
// @Summary List a student's assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.StudentExam}
// @Router /students/{id}/exams [get]
func (c *AssignmentController) ListByStudent(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	assignments, err := c.assignmentService.ListByStudent(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignments, ""))
}

// ListByExam lists an exam's assignments
// @Summary List an exam's assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=[]models.StudentExam}
// @Router /exams/{id}/assignments [get]
func (c *AssignmentController) ListByExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	assignments, err := c.assignmentService.ListByExam(ctx, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignments, ""))
}

// Unassign removes an assignment
// @Summary Remove an assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse
// @Router /student-exams/{id} [delete]
func (c *AssignmentController) Unassign(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.assignmentService.Unassign(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Assignment removed"))
}
