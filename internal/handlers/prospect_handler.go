package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type ProspectHandler struct {
	onboardingService services.OnboardingService
}

func NewProspectHandler(onboardingService services.OnboardingService) *ProspectHandler {
	return &ProspectHandler{onboardingService: onboardingService}
}

// Register is the public signup endpoint. No authentication.
func (h *ProspectHandler) Register(c *gin.Context) {
	var request services.RegisterProspectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	prospect, err := h.onboardingService.RegisterProspect(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Registration received", prospect)
}

func (h *ProspectHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	prospects, total, err := h.onboardingService.ListProspects(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Prospects retrieved", prospects, listMeta(params, total, len(prospects)))
}

type kycReviewRequest struct {
	Approve bool `json:"approve"`
}

func (h *ProspectHandler) ReviewKYC(c *gin.Context) {
	actor := middleware.GetActor(c)
	prospectID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request kycReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	prospect, err := h.onboardingService.ReviewProspectKYC(c.Request.Context(), actor, prospectID, request.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "KYC review recorded", prospect)
}

// Convert promotes an approved prospect into a user record.
func (h *ProspectHandler) Convert(c *gin.Context) {
	actor := middleware.GetActor(c)
	prospectID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.onboardingService.ConvertProspect(c.Request.Context(), actor, prospectID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Prospect converted", user)
}
