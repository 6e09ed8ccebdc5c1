package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.CreateAdminRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	admin, err := h.adminService.CreateAdmin(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Admin created", admin)
}

func (h *AdminHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	adminID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	admin, err := h.adminService.GetAdmin(c.Request.Context(), actor, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Admin retrieved", admin)
}

func (h *AdminHandler) Update(c *gin.Context) {
	actor := middleware.GetActor(c)
	adminID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request services.UpdateAdminRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	admin, err := h.adminService.UpdateAdmin(c.Request.Context(), actor, adminID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Admin updated", admin)
}

// Deactivate disables sign-in but keeps the record so user assignments
// stay intact.
func (h *AdminHandler) Deactivate(c *gin.Context) {
	actor := middleware.GetActor(c)
	adminID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeactivateAdmin(c.Request.Context(), actor, adminID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Admin deactivated", nil)
}

func (h *AdminHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	admins, total, err := h.adminService.ListAdmins(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Admins retrieved", admins, listMeta(params, total, len(admins)))
}
