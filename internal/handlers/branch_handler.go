package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type BranchHandler struct {
	branchService services.BranchService
}

func NewBranchHandler(branchService services.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

func (h *BranchHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.BranchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	branch, err := h.branchService.CreateBranch(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Branch created", branch)
}

func (h *BranchHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	branchID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	branch, err := h.branchService.GetBranch(c.Request.Context(), actor, branchID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Branch retrieved", branch)
}

func (h *BranchHandler) Update(c *gin.Context) {
	actor := middleware.GetActor(c)
	branchID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request services.BranchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	branch, err := h.branchService.UpdateBranch(c.Request.Context(), actor, branchID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Branch updated", branch)
}

func (h *BranchHandler) Delete(c *gin.Context) {
	actor := middleware.GetActor(c)
	branchID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.branchService.DeleteBranch(c.Request.Context(), actor, branchID); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *BranchHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	branches, total, err := h.branchService.ListBranches(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Branches retrieved", branches, listMeta(params, total, len(branches)))
}

// ListPublic feeds the registration form's branch picker.
func (h *BranchHandler) ListPublic(c *gin.Context) {
	branches, err := h.branchService.GetAllBranches(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Branches retrieved", branches)
}
