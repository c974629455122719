package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/logger"
	"github.com/commercesync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DefaultWebhookMaxBody bounds a webhook delivery body
const DefaultWebhookMaxBody int64 = 1 << 20

// WebhookDispatcher routes one webhook delivery
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, ev integration.WebhookEvent, raw []byte) (*appintegration.DispatchResult, error)
}

// WebhookHandler receives SOURCE entity-change notifications
type WebhookHandler struct {
	BaseHandler
	dispatcher WebhookDispatcher
	validate   *validator.Validate
	maxBody    int64
}

// NewWebhookHandler creates a WebhookHandler. maxBody <= 0 uses
// DefaultWebhookMaxBody.
func NewWebhookHandler(dispatcher WebhookDispatcher, maxBody int64) *WebhookHandler {
	if maxBody <= 0 {
		maxBody = DefaultWebhookMaxBody
	}
	return &WebhookHandler{
		dispatcher: dispatcher,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		maxBody:    maxBody,
	}
}

// Receive godoc
// @ID           receiveSourceWebhook
// @Summary      Receive a source webhook
// @Description  Applies one entity-change notification to the tenant's target store. Reconciliation failures are recorded in the sync log and still answer 200.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        request body integration.WebhookEvent true "Webhook delivery"
// @Success      200 {object} APIResponse[WebhookResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /webhooks/genuka [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	log := logger.GetGinLogger(c)

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Webhook body exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Failed to read request body")
		return
	}

	var ev integration.WebhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidPayload, "Webhook body is not valid JSON")
		return
	}
	if err := h.validate.Struct(ev); err != nil {
		h.ValidationError(c, validationDetails(err))
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), ev, raw)
	if err != nil {
		h.handleWebhookError(c, log, ev.Event, err)
		return
	}

	log.Info("Webhook processed",
		zap.String("event", result.Event),
		zap.String("tenant_id", result.TenantID),
		zap.String("subject_id", result.SubjectID),
		zap.String("status", string(result.Status)),
	)
	h.Success(c, ToWebhookResultResponse(result))
}

// handleWebhookError answers 400 for anything the sender can fix and 500
// otherwise. An unknown company is the sender's problem, so it is 400
// rather than 404.
func (h *WebhookHandler) handleWebhookError(c *gin.Context, log *zap.Logger, event string, err error) {
	switch {
	case errors.Is(err, integration.ErrInvalidPayload):
		h.ErrorWithCode(c, dto.ErrCodeInvalidPayload, "Invalid webhook payload")
	case errors.Is(err, integration.ErrUnknownEvent):
		h.ErrorWithCode(c, dto.ErrCodeUnknownEvent, "Unknown webhook event: "+event)
	case errors.Is(err, integration.ErrTenantNotFound), errors.Is(err, integration.ErrTenantInvalidID):
		h.BadRequest(c, "Unknown company")
	case errors.Is(err, integration.ErrTenantNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodeTenantNotConfigured, "Tenant configuration is incomplete")
	default:
		log.Error("Webhook dispatch failed", zap.String("event", event), zap.Error(err))
		h.InternalError(c, "Failed to process webhook")
	}
}

// validationDetails flattens validator errors into response details
func validationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.ValidationDetail{{Field: "body", Message: err.Error()}}
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   jsonFieldName(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url", "base_url":
		return "must be an http(s) URL"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// jsonFieldName converts a Go field name to its snake_case JSON name
func jsonFieldName(field string) string {
	out := make([]byte, 0, len(field)+4)
	for i := 0; i < len(field); i++ {
		ch := field[i]
		if ch >= 'A' && ch <= 'Z' {
			if i > 0 && !(field[i-1] >= 'A' && field[i-1] <= 'Z') {
				out = append(out, '_')
			}
			ch += 'a' - 'A'
		}
		out = append(out, ch)
	}
	return string(out)
}
