package handler

import (
	"context"
	"errors"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/interfaces/http/dto"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// TenantManager reads and configures tenants
type TenantManager interface {
	GetTenant(ctx context.Context, tenantID string) (*integration.Tenant, error)
	ConfigureTarget(ctx context.Context, tenantID string, in appintegration.ConfigureTargetInput) (*integration.Tenant, error)
}

// TenantHandler serves the tenant configuration endpoints
type TenantHandler struct {
	BaseHandler
	tenants TenantManager
}

// NewTenantHandler creates a TenantHandler
func NewTenantHandler(tenants TenantManager) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// GetConfiguration godoc
// @ID           getTenantConfiguration
// @Summary      Get tenant configuration
// @Description  Returns the tenant profile and its target store configuration with secrets redacted
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id path string true "Tenant (company) ID"
// @Success      200 {object} APIResponse[TenantResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /tenants/{tenant_id}/configuration [get]
func (h *TenantHandler) GetConfiguration(c *gin.Context) {
	tenant, err := h.tenants.GetTenant(c.Request.Context(), c.Param(middleware.TenantIDParam))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToTenantResponse(tenant))
}

// SaveConfiguration godoc
// @ID           saveTenantConfiguration
// @Summary      Save tenant configuration
// @Description  Replaces the target store configuration as a whole. Every field except api_version is required and base_url must be an http(s) URL.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id path string true "Tenant (company) ID"
// @Param        request body ConfigurationRequest true "Target configuration"
// @Success      200 {object} APIResponse[TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /tenants/{tenant_id}/configuration [post]
func (h *TenantHandler) SaveConfiguration(c *gin.Context) {
	var req ConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.ValidationError(c, validationDetails(err))
			return
		}
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenant, err := h.tenants.ConfigureTarget(c.Request.Context(), c.Param(middleware.TenantIDParam), appintegration.ConfigureTargetInput{
		BaseURL:        req.BaseURL,
		ConsumerKey:    req.ConsumerKey,
		ConsumerSecret: req.ConsumerSecret,
		APIVersion:     req.APIVersion,
	})
	if err != nil {
		if errors.Is(err, integration.ErrTenantInvalidConfig) {
			h.ValidationError(c, []dto.ValidationDetail{{Field: "base_url", Message: "must be an http(s) URL"}})
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToTenantResponse(tenant))
}
