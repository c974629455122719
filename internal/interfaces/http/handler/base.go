package handler

import (
	"errors"
	"net/http"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/logger"
	"github.com/commercesync/backend/internal/interfaces/http/dto"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, limit, offset int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, limit, offset))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// errorMapping pairs a sentinel with the response it produces
type errorMapping struct {
	target  error
	code    string
	message string
}

// errorMappings is checked in order; the first errors.Is match wins
var errorMappings = []errorMapping{
	{integration.ErrTenantNotFound, dto.ErrCodeNotFound, "Tenant not found"},
	{integration.ErrTenantInvalidID, dto.ErrCodeBadRequest, "Invalid tenant ID"},
	{integration.ErrTenantInvalidConfig, dto.ErrCodeValidation, "Invalid tenant configuration"},
	{integration.ErrTenantNotConfigured, dto.ErrCodeTenantNotConfigured, "Tenant configuration is incomplete"},
	{integration.ErrCallbackInvalidParams, dto.ErrCodeBadRequest, "Missing authorization callback parameters"},
	{integration.ErrCallbackInvalidHMAC, dto.ErrCodeBadRequest, "Invalid authorization callback signature"},
	{integration.ErrInvalidPayload, dto.ErrCodeInvalidPayload, "Invalid webhook payload"},
	{integration.ErrUnknownEvent, dto.ErrCodeUnknownEvent, "Unknown webhook event"},
	{integration.ErrUnknownModule, dto.ErrCodeBadRequest, "Unknown sync module"},
	{integration.ErrSyncInProgress, dto.ErrCodeConflict, "A sync is already running for this tenant"},
	{integration.ErrSourceRequestFailed, dto.ErrCodeUpstream, "Source platform request failed"},
	{integration.ErrSourceInvalidResponse, dto.ErrCodeUpstream, "Source platform returned an invalid response"},
	{integration.ErrSourceUnavailable, dto.ErrCodeUpstream, "Source platform is unavailable"},
	{integration.ErrPaginationLimit, dto.ErrCodeUpstream, "Source platform pagination limit exceeded"},
	{integration.ErrTargetRequestFailed, dto.ErrCodeUpstream, "Target store request failed"},
	{integration.ErrTargetInvalidResponse, dto.ErrCodeUpstream, "Target store returned an invalid response"},
	{integration.ErrTargetUnavailable, dto.ErrCodeUpstream, "Target store is unavailable"},
}

// HandleError converts integration errors to HTTP responses. Anything
// unrecognized is logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			h.ErrorWithCode(c, m.code, m.message)
			return
		}
	}

	logger.GetGinLogger(c).Error("Unhandled request error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}
