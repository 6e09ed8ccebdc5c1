package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type RoleHandler struct {
	roleService services.RoleService
}

func NewRoleHandler(roleService services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.RoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Role created", role)
}

func (h *RoleHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	roleID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.roleService.GetRole(c.Request.Context(), actor, roleID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Role retrieved", role)
}

func (h *RoleHandler) Update(c *gin.Context) {
	actor := middleware.GetActor(c)
	roleID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request services.RoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), actor, roleID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Role updated", role)
}

func (h *RoleHandler) Delete(c *gin.Context) {
	actor := middleware.GetActor(c)
	roleID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(c.Request.Context(), actor, roleID); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *RoleHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	roles, total, err := h.roleService.ListRoles(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Roles retrieved", roles, listMeta(params, total, len(roles)))
}

// ListPermissions returns the closed set of assignable permissions.
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	actor := middleware.GetActor(c)

	permissions := h.roleService.ListPermissions(actor)
	utils.SuccessResponse(c, "Permissions retrieved", permissions)
}
