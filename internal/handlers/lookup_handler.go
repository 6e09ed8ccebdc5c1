package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type LookupHandler struct {
	lookupService services.LookupService
}

func NewLookupHandler(lookupService services.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

func (h *LookupHandler) ListBanks(c *gin.Context) {
	banks, err := h.lookupService.ListBanks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Banks retrieved", banks)
}

func (h *LookupHandler) ListStates(c *gin.Context) {
	states, err := h.lookupService.ListStates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "States retrieved", states)
}

type resolveAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"required,account_number"`
	BankCode      string `json:"bank_code" validate:"required,bank_code"`
}

// ResolveAccount verifies an account number against the bank directory and
// returns the registered account name.
func (h *LookupHandler) ResolveAccount(c *gin.Context) {
	var request resolveAccountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&request); err != nil {
		respondError(c, err)
		return
	}

	detail, err := h.lookupService.ResolveAccount(c.Request.Context(), request.AccountNumber, request.BankCode)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Account resolved", detail)
}
