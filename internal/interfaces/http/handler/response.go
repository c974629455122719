package handler

import "github.com/commercesync/backend/internal/interfaces/http/dto"

// Envelope types below describe the JSON shapes in the generated OpenAPI
// document. They mirror dto.Response.

// APIResponse is the success envelope carrying a typed payload
// @Description Success envelope with typed data
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// ListResponse is the success envelope of offset-paginated listings such as sync logs
// @Description Paginated success envelope
type ListResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is returned for every 4xx and 5xx answer
// @Description Error envelope; error.code is machine readable, e.g. ERR_TENANT_NOT_CONFIGURED
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// SuccessResponse acknowledges a command that returns no payload, e.g. logout
// @Description Bare acknowledgement
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
