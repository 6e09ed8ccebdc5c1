package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type PlanHandler struct {
	planService services.PlanService
}

func NewPlanHandler(planService services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (h *PlanHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.PlanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Plan created", plan)
}

func (h *PlanHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), actor, planID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Plan retrieved", plan)
}

func (h *PlanHandler) Update(c *gin.Context) {
	actor := middleware.GetActor(c)
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request services.PlanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), actor, planID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Plan updated", plan)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	actor := middleware.GetActor(c)
	planID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), actor, planID); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

func (h *PlanHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	plans, total, err := h.planService.ListPlans(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Plans retrieved", plans, listMeta(params, total, len(plans)))
}

func (h *PlanHandler) ListActive(c *gin.Context) {
	plans, err := h.planService.GetActivePlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Plans retrieved", plans)
}
