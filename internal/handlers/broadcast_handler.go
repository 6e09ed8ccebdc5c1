package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type BroadcastHandler struct {
	broadcastService services.BroadcastService
}

func NewBroadcastHandler(broadcastService services.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcastService: broadcastService}
}

func (h *BroadcastHandler) Send(c *gin.Context) {
	actor := middleware.GetActor(c)

	var request services.BroadcastRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}

	broadcast, err := h.broadcastService.SendBroadcast(c.Request.Context(), actor, &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, "Broadcast sent", broadcast)
}

func (h *BroadcastHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	params := utils.GetPaginationParams(c)

	broadcasts, total, err := h.broadcastService.ListBroadcasts(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Broadcasts retrieved", broadcasts, listMeta(params, total, len(broadcasts)))
}

// GetRecipients resolves the stored targeting rule against current users.
func (h *BroadcastHandler) GetRecipients(c *gin.Context) {
	actor := middleware.GetActor(c)
	broadcastID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	recipients, err := h.broadcastService.GetRecipients(c.Request.Context(), actor, broadcastID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Recipients retrieved", recipients)
}

func (h *BroadcastHandler) Delete(c *gin.Context) {
	actor := middleware.GetActor(c)
	broadcastID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.broadcastService.DeleteBroadcast(c.Request.Context(), actor, broadcastID); err != nil {
		respondError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
