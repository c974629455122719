package handler

import (
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/interfaces/http/dto"
)

// SyncRequest optionally narrows a manual run to some modules
// @Description Modules to synchronize; all of them when empty
type SyncRequest struct {
	Modules []string `json:"modules" example:"products,customers"`
}

// SyncFailureResponse describes one entity that could not be written
// @Description Failed entity in a sync run
type SyncFailureResponse struct {
	SubjectID    string `json:"subject_id" example:"prod_01H8"`
	Action       string `json:"action" example:"create"`
	ErrorMessage string `json:"error_message" example:"integration: target request failed: status 400"`
}

// SyncResultResponse summarizes one module run
// @Description Per-module sync summary
type SyncResultResponse struct {
	Module       string                `json:"module" example:"products"`
	Status       string                `json:"status" example:"PARTIAL"`
	TotalCount   int                   `json:"total_count" example:"42"`
	SuccessCount int                   `json:"success_count" example:"40"`
	FailedCount  int                   `json:"failed_count" example:"2"`
	FailedItems  []SyncFailureResponse `json:"failed_items,omitempty"`
	Error        string                `json:"error,omitempty"`
	SyncedAt     time.Time             `json:"synced_at"`
}

// SyncReportResponse summarizes a manual tenant run
// @Description Tenant sync report
type SyncReportResponse struct {
	TenantID   string               `json:"tenant_id" example:"company-42"`
	Results    []SyncResultResponse `json:"results"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// ToSyncReportResponse converts the application report
func ToSyncReportResponse(r *appintegration.TenantSyncReport) SyncReportResponse {
	resp := SyncReportResponse{
		TenantID:   r.TenantID,
		Results:    make([]SyncResultResponse, 0, len(r.Results)),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	for _, res := range r.Results {
		if res == nil {
			continue
		}
		item := SyncResultResponse{
			Module:       string(res.Module),
			Status:       string(res.Status),
			TotalCount:   res.TotalCount,
			SuccessCount: res.SuccessCount,
			FailedCount:  res.FailedCount,
			Error:        res.Error,
			SyncedAt:     res.SyncedAt,
		}
		for _, f := range res.FailedItems {
			item.FailedItems = append(item.FailedItems, SyncFailureResponse{
				SubjectID:    f.SubjectID,
				Action:       string(f.Action),
				ErrorMessage: f.ErrorMessage,
			})
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}

// SyncLogQuery carries the sync log listing filters
type SyncLogQuery struct {
	dto.PageRequest
	Module  string `form:"module"`
	Outcome string `form:"outcome"`
}

// SyncLogResponse is one sync log entry
// @Description Sync log entry
type SyncLogResponse struct {
	ID         string    `json:"id" example:"0b0f7e5c-3c1e-4a5e-9a55-8f9d2f1c7b11"`
	Module     string    `json:"module" example:"orders"`
	Action     string    `json:"action" example:"update"`
	SubjectID  string    `json:"subject_id" example:"ord_01H8"`
	Outcome    string    `json:"outcome" example:"success"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToSyncLogResponses converts domain log entries
func ToSyncLogResponses(entries []integration.SyncLogEntry) []SyncLogResponse {
	out := make([]SyncLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, SyncLogResponse{
			ID:         e.ID.String(),
			Module:     string(e.Module),
			Action:     string(e.Action),
			SubjectID:  e.SubjectID,
			Outcome:    string(e.Outcome),
			Message:    e.Message,
			OccurredAt: e.OccurredAt,
		})
	}
	return out
}

// WebhookResultResponse reports what a webhook delivery did
// @Description Webhook processing result
type WebhookResultResponse struct {
	Event     string `json:"event" example:"product.updated"`
	TenantID  string `json:"tenant_id" example:"company-42"`
	SubjectID string `json:"subject_id" example:"prod_01H8"`
	Status    string `json:"status" example:"processed"`
	Action    string `json:"action,omitempty" example:"update"`
	State     string `json:"state,omitempty" example:"updated"`
	TargetID  int64  `json:"target_id,omitempty" example:"1042"`
	Reason    string `json:"reason,omitempty"`
}

// ToWebhookResultResponse converts a dispatch result
func ToWebhookResultResponse(r *appintegration.DispatchResult) WebhookResultResponse {
	return WebhookResultResponse{
		Event:     r.Event,
		TenantID:  r.TenantID,
		SubjectID: r.SubjectID,
		Status:    string(r.Status),
		Action:    string(r.Action),
		State:     string(r.State),
		TargetID:  r.TargetID,
		Reason:    r.Reason,
	}
}
