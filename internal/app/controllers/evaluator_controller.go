package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/services"
	"github.com/ecoehub/ecoe-backend/internal/middleware"
)

// EvaluatorController handles evaluator account management endpoints
type EvaluatorController struct {
	evaluatorService *services.EvaluatorService
}

// NewEvaluatorController creates a new EvaluatorController
func NewEvaluatorController(evaluatorService *services.EvaluatorService) *EvaluatorController {
	return &EvaluatorController{evaluatorService: evaluatorService}
}

// CreateEvaluator creates an evaluator with their login account
// @Summary Create an evaluator
// @Tags evaluators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEvaluatorRequest true "Evaluator"
// @Success 201 {object} dto.APIResponse{data=models.Evaluator}
// @Failure 409 {object} dto.APIResponse
// @Router /evaluators [post]
func (c *EvaluatorController) CreateEvaluator(ctx *gin.Context) {
	var req dto.CreateEvaluatorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	evaluator, err := c.evaluatorService.CreateEvaluator(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(evaluator, "Evaluator created"))
}

// GetEvaluator retrieves an evaluator
// @Summary Get an evaluator
// @Tags evaluators
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluator ID"
// @Success 200 {object} dto.APIResponse{data=models.Evaluator}
// @Failure 404 {object} dto.APIResponse
// @Router /evaluators/{id} [get]
func (c *EvaluatorController) GetEvaluator(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	evaluator, err := c.evaluatorService.GetEvaluator(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluator, ""))
}

// ListEvaluators lists all evaluators
// @Summary List evaluators
// @Tags evaluators
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Evaluator}
// @Router /evaluators [get]
func (c *EvaluatorController) ListEvaluators(ctx *gin.Context) {
	evaluators, err := c.evaluatorService.ListEvaluators(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluators, ""))
}

// UpdateEvaluator updates an evaluator
// @Summary Update an evaluator
// @Tags evaluators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluator ID"
// @Param request body dto.UpdateEvaluatorRequest true "Evaluator"
// @Success 200 {object} dto.APIResponse{data=models.Evaluator}
// @Failure 404 {object} dto.APIResponse
// @Router /evaluators/{id} [put]
func (c *EvaluatorController) UpdateEvaluator(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEvaluatorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	evaluator, err := c.evaluatorService.UpdateEvaluator(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(evaluator, "Evaluator updated"))
}

// DeleteEvaluator removes an evaluator without active assignments
// @Summary Delete an evaluator
// @Tags evaluators
// @Produce json
// @Security BearerAuth
// @Param id path int true "Evaluator ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /evaluators/{id} [delete]
func (c *EvaluatorController) DeleteEvaluator(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.evaluatorService.DeleteEvaluator(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Evaluator deleted"))
}
