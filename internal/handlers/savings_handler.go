package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/models"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type SavingsHandler struct {
	savingsService services.SavingsService
}

func NewSavingsHandler(savingsService services.SavingsService) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService}
}

func (h *SavingsHandler) Subscribe(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.SubscribeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	subscription, err := h.savingsService.Subscribe(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Subscription placed", subscription)
}

type resolveRequest struct {
	Approve bool `json:"approve"`
}

func (h *SavingsHandler) ResolveSubscription(c *gin.Context) {
	actor := middleware.GetActor(c)
	subscriptionID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request resolveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	subscription, err := h.savingsService.ResolveSubscription(c.Request.Context(), actor, subscriptionID, request.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Subscription resolved", subscription)
}

func (h *SavingsHandler) PlaceTransaction(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.PlaceTransactionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	transaction, err := h.savingsService.PlaceTransaction(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Transaction placed", transaction)
}

func (h *SavingsHandler) ResolveTransaction(c *gin.Context) {
	actor := middleware.GetActor(c)
	transactionID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request resolveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	transaction, err := h.savingsService.ResolveTransaction(c.Request.Context(), actor, transactionID, request.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Transaction resolved", transaction)
}

// ListTransactions filters by status, defaulting to the pending queue.
func (h *SavingsHandler) ListTransactions(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	status := models.TransactionStatus(c.DefaultQuery("status", string(models.TransactionStatusPending)))
	if !status.IsValid() {
		utils.BadRequestResponse(c, "invalid status")
		return
	}

	transactions, total, err := h.savingsService.ListTransactionsByStatus(c.Request.Context(), actor, status, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved", transactions, listMeta(params, total, len(transactions)))
}
