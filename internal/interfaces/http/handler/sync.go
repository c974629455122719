package handler

import (
	"context"
	"errors"
	"io"
	"strings"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/logger"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TenantSyncer runs a manual synchronization for one tenant
type TenantSyncer interface {
	SyncTenant(ctx context.Context, tenantID string, modules ...integration.SyncModule) (*appintegration.TenantSyncReport, error)
}

// SyncLogReader lists a tenant's sync log
type SyncLogReader interface {
	ListForTenant(ctx context.Context, tenantID string, filter integration.SyncLogFilter) ([]integration.SyncLogEntry, int64, error)
}

// SyncHandler serves the manual sync and sync log endpoints
type SyncHandler struct {
	BaseHandler
	syncer TenantSyncer
	logs   SyncLogReader
}

// NewSyncHandler creates a SyncHandler
func NewSyncHandler(syncer TenantSyncer, logs SyncLogReader) *SyncHandler {
	return &SyncHandler{syncer: syncer, logs: logs}
}

// TriggerSync godoc
// @ID           triggerTenantSync
// @Summary      Synchronize a tenant now
// @Description  Runs products, customers and orders (or the requested subset) for the tenant and returns a per-module summary. Modules come from the JSON body or a comma separated modules query parameter.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id path string true "Tenant (company) ID"
// @Param        modules query string false "Comma separated modules" example(products,orders)
// @Param        request body SyncRequest false "Modules to synchronize"
// @Success      200 {object} APIResponse[SyncReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /tenants/{tenant_id}/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	tenantID := c.Param(middleware.TenantIDParam)

	names, err := requestedModules(c)
	if err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	modules := make([]integration.SyncModule, 0, len(names))
	for _, name := range names {
		m, err := integration.ParseSyncModule(name)
		if err != nil {
			h.BadRequest(c, "Unknown sync module: "+name)
			return
		}
		modules = append(modules, m)
	}

	report, err := h.syncer.SyncTenant(c.Request.Context(), tenantID, modules...)
	if err != nil {
		logger.GetGinLogger(c).Warn("Manual sync failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToSyncReportResponse(report))
}

// requestedModules collects module names from the query string and the
// optional JSON body.
func requestedModules(c *gin.Context) ([]string, error) {
	var names []string
	for _, raw := range c.QueryArray("modules") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}

	if c.Request.ContentLength == 0 {
		return names, nil
	}
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		return nil, err
	}
	for _, name := range req.Modules {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ListSyncLogs godoc
// @ID           listTenantSyncLogs
// @Summary      List sync log entries
// @Description  Returns the tenant's sync log, most recent first
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Param        tenant_id path string true "Tenant (company) ID"
// @Param        module query string false "Module filter" Enums(products, customers, orders)
// @Param        outcome query string false "Outcome filter" Enums(success, failed)
// @Param        limit query int false "Page size (default 50, max 500)"
// @Param        offset query int false "Offset"
// @Success      200 {object} ListResponse[SyncLogResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tenants/{tenant_id}/sync-logs [get]
func (h *SyncHandler) ListSyncLogs(c *gin.Context) {
	tenantID := c.Param(middleware.TenantIDParam)

	var q SyncLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	page := q.PageRequest.Normalize()

	filter := integration.SyncLogFilter{Limit: page.Limit, Offset: page.Offset}
	if q.Module != "" {
		m, err := integration.ParseSyncModule(q.Module)
		if err != nil {
			h.BadRequest(c, "Unknown sync module: "+q.Module)
			return
		}
		filter.Module = &m
	}
	if q.Outcome != "" {
		o := integration.SyncOutcome(strings.ToLower(q.Outcome))
		if !o.IsValid() {
			h.BadRequest(c, "Outcome must be success or failed")
			return
		}
		filter.Outcome = &o
	}

	entries, total, err := h.logs.ListForTenant(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, ToSyncLogResponses(entries), total, page.Limit, page.Offset)
}
