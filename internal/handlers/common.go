package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coopsave/internal/repositories/interfaces"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

// respondError maps service errors onto the response envelope. Anything
// unrecognized is a 500 with no internals leaked.
func respondError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		utils.ValidationErrorResponse(c, utils.FormatValidationErrors(verrs))
		return
	}

	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrInvalidCredential):
		utils.UnauthorizedResponse(c)
	case errors.Is(err, services.ErrAccessRevoked):
		utils.ForbiddenResponse(c)
	case errors.Is(err, interfaces.ErrNotFound):
		utils.NotFoundResponse(c, "resource")
	case errors.Is(err, services.ErrSubscriptionBlocked),
		errors.Is(err, services.ErrAlreadyResolved),
		errors.Is(err, services.ErrPhoneTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrRoleNameTaken),
		errors.Is(err, services.ErrBranchNameTaken),
		errors.Is(err, services.ErrAlreadyActive):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrRoleHasHolders),
		errors.Is(err, services.ErrBranchInUse),
		errors.Is(err, services.ErrPlanHasSubscribers),
		errors.Is(err, services.ErrUserNotActive),
		errors.Is(err, services.ErrPlanNotActive),
		errors.Is(err, services.ErrKYCNotApproved),
		errors.Is(err, services.ErrNoAssignedAdmin),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrNoApprovedSubscription),
		errors.Is(err, services.ErrUnknownPermission),
		errors.Is(err, services.ErrAccountResolution):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "UNPROCESSABLE", err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}

// objectIDParam parses the named path parameter. A false return means the
// response has already been written.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func listMeta(params *utils.PaginationParams, total int64, count int) *utils.Meta {
	return &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      count,
	}
}
