package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/services"
	"github.com/ecoehub/ecoe-backend/internal/middleware"
)

// HospitalController handles the hospital catalogue endpoints
type HospitalController struct {
	hospitalService *services.HospitalService
}

// NewHospitalController creates a new HospitalController
func NewHospitalController(hospitalService *services.HospitalService) *HospitalController {
	return &HospitalController{hospitalService: hospitalService}
}

// CreateHospital registers a hospital
// @Summary Create a hospital
// @Tags hospitals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateHospitalRequest true "Hospital"
// @Success 201 {object} dto.APIResponse{data=models.Hospital}
// @Router /hospitals [post]
func (c *HospitalController) CreateHospital(ctx *gin.Context) {
	var req dto.CreateHospitalRequest
	if !bindJSON(ctx, &req) {
		return
	}

	hospital, err := c.hospitalService.CreateHospital(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(hospital, "Hospital created"))
}

// GetHospital retrieves a hospital
// @Summary Get a hospital
// @Tags hospitals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Hospital ID"
// @Success 200 {object} dto.APIResponse{data=models.Hospital}
// @Failure 404 {object} dto.APIResponse
// @Router /hospitals/{id} [get]
func (c *HospitalController) GetHospital(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	hospital, err := c.hospitalService.GetHospital(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(hospital, ""))
}

// ListHospitals lists all hospitals
// @Summary List hospitals
// @Tags hospitals
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} dto.APIResponse{data=[]models.Hospital}
// @Router /hospitals [get]
func (c *HospitalController) ListHospitals(ctx *gin.Context) {
	forceRefresh := ctx.Query("refresh") == "true"

	hospitals, err := c.hospitalService.ListHospitals(ctx, forceRefresh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(hospitals, ""))
}

// UpdateHospital updates a hospital
// @Summary Update a hospital
// @Tags hospitals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Hospital ID"
// @Param request body dto.CreateHospitalRequest true "Hospital"
// @Success 200 {object} dto.APIResponse{data=models.Hospital}
// @Failure 404 {object} dto.APIResponse
// @Router /hospitals/{id} [put]
func (c *HospitalController) UpdateHospital(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateHospitalRequest
	if !bindJSON(ctx, &req) {
		return
	}

	hospital, err := c.hospitalService.UpdateHospital(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(hospital, "Hospital updated"))
}

// DeleteHospital removes a hospital without attached students
// @Summary Delete a hospital
// @Tags hospitals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Hospital ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /hospitals/{id} [delete]
func (c *HospitalController) DeleteHospital(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.hospitalService.DeleteHospital(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Hospital deleted"))
}
