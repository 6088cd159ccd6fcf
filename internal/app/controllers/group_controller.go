package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/services"
	"github.com/ecoehub/ecoe-backend/internal/middleware"
)

// GroupController handles student cohort endpoints
type GroupController struct {
	groupService *services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService *services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

// CreateGroup registers a cohort
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGroupRequest true "Group"
// @Success 201 {object} dto.APIResponse{data=models.Group}
// @Router /groups [post]
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	var req dto.CreateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.CreateGroup(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(group, "Group created"))
}

// GetGroup retrieves a group
// @Summary Get a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=models.Group}
// @Failure 404 {object} dto.APIResponse
// @Router /groups/{id} [get]
func (c *GroupController) GetGroup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	group, err := c.groupService.GetGroup(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group, ""))
}

// ListGroups lists all groups
// @Summary List groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} dto.APIResponse{data=[]models.Group}
// @Router /groups [get]
func (c *GroupController) ListGroups(ctx *gin.Context) {
	forceRefresh := ctx.Query("refresh") == "true"

	groups, err := c.groupService.ListGroups(ctx, forceRefresh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(groups, ""))
}

// ListGroupStudents lists the members of a group
// @Summary List group members
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Failure 404 {object} dto.APIResponse
// @Router /groups/{id}/students [get]
func (c *GroupController) ListGroupStudents(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	students, err := c.groupService.ListGroupStudents(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(students, ""))
}

// UpdateGroup updates a group
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param request body dto.CreateGroupRequest true "Group"
// @Success 200 {object} dto.APIResponse{data=models.Group}
// @Failure 404 {object} dto.APIResponse
// @Router /groups/{id} [put]
func (c *GroupController) UpdateGroup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.UpdateGroup(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group, "Group updated"))
}

// DeleteGroup removes a group
// @Summary Delete a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse
// @Router /groups/{id} [delete]
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.groupService.DeleteGroup(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Group deleted"))
}
