package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// envelope is the body shape every endpoint answers with. Error and Data
// are mutually exclusive; Meta rides along on list responses only.
type envelope struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *errorBody  `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta carries list pagination alongside the page itself.
type Meta struct {
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Total      int64           `json:"total,omitempty"`
	Count      int             `json:"count,omitempty"`
}

func respond(c *gin.Context, statusCode int, body envelope) {
	body.RequestID = c.Writer.Header().Get("X-Request-ID")
	body.Timestamp = time.Now().UTC()
	c.JSON(statusCode, body)
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusOK, envelope{Status: StatusSuccess, Message: message, Data: data})
}

func SuccessResponseWithMeta(c *gin.Context, message string, data interface{}, meta *Meta) {
	respond(c, http.StatusOK, envelope{Status: StatusSuccess, Message: message, Data: data, Meta: meta})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	respond(c, http.StatusCreated, envelope{Status: StatusSuccess, Message: message, Data: data})
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, envelope{Status: StatusError, Error: &errorBody{Code: code, Message: message}})
}

// ValidationErrorResponse reports binding failures keyed by field name so
// the dashboard can highlight the offending inputs.
func ValidationErrorResponse(c *gin.Context, fields map[string]string) {
	respond(c, http.StatusBadRequest, envelope{
		Status: StatusError,
		Error:  &errorBody{Code: "VALIDATION_ERROR", Message: ErrValidationFailed, Details: fields},
	})
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func UnauthorizedResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized)
}

func ForbiddenResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", ErrForbidden)
}

func NotFoundResponse(c *gin.Context, resource string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", resource+" not found")
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, "CONFLICT", message)
}

func InternalServerErrorResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", ErrInternalServer)
}
