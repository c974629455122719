package handler

import (
	"context"
	"net/http"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/infrastructure/logger"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallbackProcessor completes the onboarding authorization
type CallbackProcessor interface {
	HandleCallback(ctx context.Context, in appintegration.CallbackInput) (*appintegration.CallbackResult, error)
}

// TenantRevoker invalidates every dashboard token of a tenant
type TenantRevoker interface {
	RevokeTenant(ctx context.Context, tenantID string, ttl time.Duration) error
}

// AuthHandler serves the onboarding callback and dashboard logout
type AuthHandler struct {
	BaseHandler
	callbacks CallbackProcessor
	revoker   TenantRevoker
	tokenTTL  time.Duration
}

// NewAuthHandler creates an AuthHandler. tokenTTL is the dashboard token
// lifetime and bounds how long a logout is remembered.
func NewAuthHandler(callbacks CallbackProcessor, revoker TenantRevoker, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{callbacks: callbacks, revoker: revoker, tokenTTL: tokenTTL}
}

// Callback godoc
// @ID           authorizationCallback
// @Summary      Complete source authorization
// @Description  Verifies the callback parameters, exchanges the authorization code, records the company as a tenant and redirects to redirect_to with company_id and a dashboard token appended
// @Tags         auth
// @Param        company_id query string true "Company ID"
// @Param        code query string true "Authorization code"
// @Param        timestamp query string true "Callback timestamp"
// @Param        hmac query string true "Hex HMAC-SHA256 of the sorted parameters"
// @Param        redirect_to query string false "Where to send the browser afterwards"
// @Success      302
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	result, err := h.callbacks.HandleCallback(c.Request.Context(), appintegration.CallbackInput{
		CompanyID:  c.Query("company_id"),
		Code:       c.Query("code"),
		Timestamp:  c.Query("timestamp"),
		HMAC:       c.Query("hmac"),
		RedirectTo: c.Query("redirect_to"),
	})
	if err != nil {
		logger.GetGinLogger(c).Warn("Authorization callback rejected",
			zap.String("company_id", c.Query("company_id")),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, result.RedirectURL)
}

// Logout godoc
// @ID           logoutTenant
// @Summary      Revoke dashboard sessions
// @Description  Invalidates every dashboard token issued for the tenant so far
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id path string true "Tenant (company) ID"
// @Success      200 {object} SuccessResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tenants/{tenant_id}/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tenantID := c.Param(middleware.TenantIDParam)
	if err := h.revoker.RevokeTenant(c.Request.Context(), tenantID, h.tokenTTL); err != nil {
		logger.GetGinLogger(c).Error("Failed to revoke tenant sessions",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		h.InternalError(c, "Failed to revoke sessions")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
