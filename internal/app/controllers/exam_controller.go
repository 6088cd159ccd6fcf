package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/services"
	"github.com/ecoehub/ecoe-backend/internal/middleware"
	"github.com/ecoehub/ecoe-backend/internal/pkg/helpers"
)

// ExamController handles the exam definition tree endpoints
type ExamController struct {
	examService *services.ExamService
}

// NewExamController creates a new ExamController
func NewExamController(examService *services.ExamService) *ExamController {
	return &ExamController{examService: examService}
}

// pathID parses a numeric path parameter; a non-numeric value aborts with 400
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")))
		return 0, false
	}
	return id, true
}

func bindJSON(ctx *gin.Context, target interface{}) bool {
	if err := ctx.ShouldBindJSON(target); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request payload").WithDetails(err.Error())))
		return false
	}
	return true
}

// CreateExam creates an exam definition
// @Summary Create an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateExamRequest true "Exam"
// @Success 201 {object} dto.APIResponse{data=models.Exam}
// @Failure 400 {object} dto.APIResponse
// @Router /exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req dto.CreateExamRequest
	if !bindJSON(ctx, &req) {
		return
	}

	exam, err := c.examService.CreateExam(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(exam, "Exam created"))
}

// GetExam retrieves an exam with its full tree
// @Summary Get an exam tree
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} dto.APIResponse{data=models.Exam}
// @Failure 404 {object} dto.APIResponse
// @Router /exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	forceRefresh := ctx.Query("refresh") == "true"
	exam, err := c.examService.GetExam(ctx, id, forceRefresh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exam, ""))
}

// ListExams retrieves a page of exams
// @Summary List exams
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse}
// @Router /exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	page, pageSize := helpers.ExtractPaginationParams(ctx)

	exams, total, err := c.examService.ListExams(ctx, page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PagedResponse{
		Items:      exams,
		Pagination: helpers.NewPaginationInfo(total, page, pageSize),
	}, ""))
}

// UpdateExam updates scalar exam fields
// @Summary Update an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.UpdateExamRequest true "Exam"
// @Success 200 {object} dto.APIResponse{data=models.Exam}
// @Failure 404 {object} dto.APIResponse
// @Router /exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateExamRequest
	if !bindJSON(ctx, &req) {
		return
	}

	exam, err := c.examService.UpdateExam(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(exam, "Exam updated"))
}

// DeleteExam deletes an exam without assignments
// @Summary Delete an exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.examService.DeleteExam(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Exam deleted"))
}

// DuplicateExam deep-copies an exam for a new application date
// @Summary Duplicate an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Source exam ID"
// @Param request body dto.DuplicateExamRequest true "New application date"
// @Success 201 {object} dto.APIResponse{data=dto.DuplicateExamResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /exams/{id}/duplicate [post]
func (c *ExamController) DuplicateExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.DuplicateExamRequest
	if !bindJSON(ctx, &req) {
		return
	}

	newID, err := c.examService.DuplicateExam(ctx, id, req.AppliedAt)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(
		dto.DuplicateExamResponse{NewExamID: newID}, "Exam duplicated"))
}

// CreateStation adds a station to an exam
// @Summary Create a station
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Param request body dto.CreateStationRequest true "Station"
// @Success 201 {object} dto.APIResponse{data=models.Station}
// @Router /exams/{id}/stations [post]
func (c *ExamController) CreateStation(ctx *gin.Context) {
	examID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateStationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	station, err := c.examService.CreateStation(ctx, examID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(station, "Station created"))
}

// ListStations retrieves the stations of an exam
// @Summary List exam stations
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Station}
// @Failure 404 {object} dto.APIResponse
// @Router /exams/{id}/stations [get]
func (c *ExamController) ListStations(ctx *gin.Context) {
	examID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	stations, err := c.examService.ListStations(ctx, examID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stations, ""))
}

// UpdateStation updates a station
// @Summary Update a station
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param stationId path int true "Station ID"
// @Param request body dto.CreateStationRequest true "Station"
// @Success 200 {object} dto.APIResponse{data=models.Station}
// @Router /stations/{stationId} [put]
func (c *ExamController) UpdateStation(ctx *gin.Context) {
	stationID, ok := pathID(ctx, "stationId")
	if !ok {
		return
	}

	var req dto.CreateStationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	station, err := c.examService.UpdateStation(ctx, stationID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(station, "Station updated"))
}

// DeleteStation removes a station
// @Summary Delete a station
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param stationId path int true "Station ID"
// @Success 200 {object} dto.APIResponse
// @Router /stations/{stationId} [delete]
func (c *ExamController) DeleteStation(ctx *gin.Context) {
	stationID, ok := pathID(ctx, "stationId")
	if !ok {
		return
	}

	if err := c.examService.DeleteStation(ctx, stationID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Station deleted"))
}

// CreateQuestion adds a question to a station
// @Summary Create a question
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param stationId path int true "Station ID"
// @Param request body dto.CreateQuestionRequest true "Question"
// @Success 201 {object} dto.APIResponse{data=models.Question}
// @Router /stations/{stationId}/questions [post]
func (c *ExamController) CreateQuestion(ctx *gin.Context) {
	stationID, ok := pathID(ctx, "stationId")
	if !ok {
		return
	}

	var req dto.CreateQuestionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	question, err := c.examService.CreateQuestion(ctx, stationID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(question, "Question created"))
}

// ListQuestions retrieves the questions of a station
// @Summary List station questions
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param stationId path int true "Station ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Question}
// @Failure 404 {object} dto.APIResponse
// @Router /stations/{stationId}/questions [get]
func (c *ExamController) ListQuestions(ctx *gin.Context) {
	stationID, ok := pathID(ctx, "stationId")
	if !ok {
		return
	}

	questions, err := c.examService.ListQuestions(ctx, stationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(questions, ""))
}

// UpdateQuestion updates a question
// @Summary Update a question
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "Question ID"
// @Param request body dto.CreateQuestionRequest true "Question"
// @Success 200 {object} dto.APIResponse{data=models.Question}
// @Router /questions/{questionId} [put]
func (c *ExamController) UpdateQuestion(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}

	var req dto.CreateQuestionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	question, err := c.examService.UpdateQuestion(ctx, questionID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(question, "Question updated"))
}

// DeleteQuestion removes a question
// @Summary Delete a question
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "Question ID"
// @Success 200 {object} dto.APIResponse
// @Router /questions/{questionId} [delete]
func (c *ExamController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}

	if err := c.examService.DeleteQuestion(ctx, questionID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Question deleted"))
}

// CreateOption adds an option to a choice question
// @Summary Create an option
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "Question ID"
// @Param request body dto.CreateOptionPayload true "Option"
// @Success 201 {object} dto.APIResponse{data=models.Option}
// @Router /questions/{questionId}/options [post]
func (c *ExamController) CreateOption(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}

	var req dto.CreateOptionPayload
	if !bindJSON(ctx, &req) {
		return
	}

	option, err := c.examService.CreateOption(ctx, questionID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(option, "Option created"))
}

// ListOptions retrieves the options of a question
// @Summary List question options
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "Question ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Option}
// @Failure 404 {object} dto.APIResponse
// @Router /questions/{questionId}/options [get]
func (c *ExamController) ListOptions(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "questionId")
	if !ok {
		return
	}

	options, err := c.examService.ListOptions(ctx, questionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(options, ""))
}

// UpdateOption updates an option
// @Summary Update an option
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param optionId path int true "Option ID"
// @Param request body dto.CreateOptionPayload true "Option"
// @Success 200 {object} dto.APIResponse{data=models.Option}
// @Router /options/{optionId} [put]
func (c *ExamController) UpdateOption(ctx *gin.Context) {
	optionID, ok := pathID(ctx, "optionId")
	if !ok {
		return
	}

	var req dto.CreateOptionPayload
	if !bindJSON(ctx, &req) {
		return
	}

	option, err := c.examService.UpdateOption(ctx, optionID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(option, "Option updated"))
}

// DeleteOption removes an option
// @Summary Delete an option
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param optionId path int true "Option ID"
// @Success 200 {object} dto.APIResponse
// @Router /options/{optionId} [delete]
func (c *ExamController) DeleteOption(ctx *gin.Context) {
	optionID, ok := pathID(ctx, "optionId")
	if !ok {
		return
	}

	if err := c.examService.DeleteOption(ctx, optionID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Option deleted"))
}

// SweepStatuses deactivates expired ACTIVO exams
// @Summary Run the status sweep
// @Tags maintenance
// @Produce json
// @Param Authorization header string true "Bearer shared cron secret"
// @Success 200 {object} dto.APIResponse{data=dto.SweepResponse}
// @Failure 401 {object} dto.APIResponse
// @Router /cron/update-exam-status [post]
func (c *ExamController) SweepStatuses(ctx *gin.Context) {
	count, err := c.examService.SweepStatuses(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SweepResponse{Deactivated: count}, "Sweep completed"))
}
