package handlers

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/middleware"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

type AuthHandler struct {
	identityService services.IdentityService
}

func NewAuthHandler(identityService services.IdentityService) *AuthHandler {
	return &AuthHandler{identityService: identityService}
}

// Login exchanges a Firebase ID token for an API access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var request services.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "invalid request body")
		return
	}
	request.IPAddress = c.ClientIP()

	response, err := h.identityService.Login(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

// GetProfile returns the signed-in admin with their role and permissions.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		utils.UnauthorizedResponse(c)
		return
	}

	profile, err := h.identityService.GetProfile(c.Request.Context(), actor.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", profile)
}
