package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/services"
	"github.com/ecoehub/ecoe-backend/internal/middleware"
)

// EvaluationController handles the evaluator scoring workflow endpoints
type EvaluationController struct {
	evaluationService *services.EvaluationService
	evaluatorService  *services.EvaluatorService
}

// NewEvaluationController creates a new EvaluationController
func NewEvaluationController(evaluationService *services.EvaluationService, evaluatorService *services.EvaluatorService) *EvaluationController {
	return &EvaluationController{
		evaluationService: evaluationService,
		evaluatorService:  evaluatorService,
	}
}

// callerEvaluatorID resolves the evaluator profile of the authenticated user
func (c *EvaluationController) callerEvaluatorID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return 0, false
	}

	evaluator, err := c.evaluatorService.GetEvaluatorByUserID(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}

	return evaluator.ID, true
}

// ListMyAssignments lists the caller's claimed assignments
// @Summary List the caller's assignments
// @Tags evaluation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.StudentExam}
// @Router /evaluator/assignments [get]
func (c *EvaluationController) ListMyAssignments(ctx *gin.Context) {
	evaluatorID, ok := c.callerEvaluatorID(ctx)
	if !ok {
		return
	}

	assignments, err := c.evaluationService.ListAssignments(ctx, evaluatorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignments, ""))
}

// RecordAnswers upserts a batch of answers for an assignment
// @Summary Record a batch of answers
// @Tags evaluation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BatchAnswersRequest true "Answer batch"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /evaluator/answers/batch [post]
func (c *EvaluationController) RecordAnswers(ctx *gin.Context) {
	evaluatorID, ok := c.callerEvaluatorID(ctx)
	if !ok {
		return
	}

	var req dto.BatchAnswersRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.evaluationService.RecordAnswerBatch(ctx, evaluatorID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Answers recorded"))
}

// ApplyAction starts or finalizes an assignment
// @Summary Apply a workflow action to an assignment
// @Tags evaluation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body dto.AssignmentActionRequest true "Action"
// @Success 200 {object} dto.APIResponse{data=models.StudentExam}
// @Failure 409 {object} dto.APIResponse
// @Router /evaluator-exams/{id} [put]
func (c *EvaluationController) ApplyAction(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	evaluatorID, ok := c.callerEvaluatorID(ctx)
	if !ok {
		return
	}

	var req dto.AssignmentActionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	assignment, err := c.evaluationService.ApplyAction(ctx, evaluatorID, assignmentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignment, "Action applied"))
}

// GetResults returns the scored results view of an assignment
// @Summary Get assignment results
// @Tags evaluation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.ResultsView}
// @Failure 404 {object} dto.APIResponse
// @Router /evaluator/results/{id} [get]
func (c *EvaluationController) GetResults(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	view, err := c.evaluationService.GetResults(ctx, assignmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(view, ""))
}
