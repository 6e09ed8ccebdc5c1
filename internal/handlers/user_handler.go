package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type UserHandler struct {
	onboardingService services.OnboardingService
	savingsService    services.SavingsService
}

func NewUserHandler(onboardingService services.OnboardingService, savingsService services.SavingsService) *UserHandler {
	return &UserHandler{
		onboardingService: onboardingService,
		savingsService:    savingsService,
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.CreateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	user, err := h.onboardingService.CreateUser(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "User created", user)
}

func (h *UserHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.onboardingService.GetUser(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved", user)
}

func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	users, total, err := h.onboardingService.ListUsers(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved", users, listMeta(params, total, len(users)))
}

func (h *UserHandler) ReviewKYC(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request kycReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	user, err := h.onboardingService.ReviewUserKYC(c.Request.Context(), actor, userID, request.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "KYC review recorded", user)
}

func (h *UserHandler) SetBankAccount(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request services.BankAccountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	user, err := h.onboardingService.SetBankAccount(c.Request.Context(), actor, userID, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bank account saved", user)
}

func (h *UserHandler) AssignAdmin(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := objectIDParam(c, "admin_id")
	if !ok {
		return
	}

	if err := h.onboardingService.AssignAdmin(c.Request.Context(), actor, userID, adminID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Admin assigned", nil)
}

func (h *UserHandler) UnassignAdmin(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := objectIDParam(c, "admin_id")
	if !ok {
		return
	}

	if err := h.onboardingService.UnassignAdmin(c.Request.Context(), actor, userID, adminID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Admin unassigned", nil)
}

// Activate provisions the sign-in credential and notifies the user.
func (h *UserHandler) Activate(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.onboardingService.ActivateUser(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "User activated", user)
}

func (h *UserHandler) Restrict(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.onboardingService.RestrictUser(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "User restricted", user)
}

func (h *UserHandler) GetSubscriptions(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	subscriptions, err := h.savingsService.GetUserSubscriptions(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Subscriptions retrieved", subscriptions)
}

func (h *UserHandler) GetTransactions(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	transactions, total, err := h.savingsService.GetUserTransactions(c.Request.Context(), actor, userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved", transactions, listMeta(params, total, len(transactions)))
}

func (h *UserHandler) GetPlanBalance(c *gin.Context) {
	actor := middleware.GetActor(c)
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "plan_id")
	if !ok {
		return
	}

	balance, err := h.savingsService.GetPlanBalance(c.Request.Context(), actor, userID, planID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Balance retrieved", gin.H{"balance": balance})
}
