// Package handlers provides the gateway's HTTP handlers: the registry
// forwarder that proxies every storefront operation, and the gateway's own
// introspection endpoints (route table, session, notification journal).
//
// This file defines the response helpers shared by all of them. Every error
// leaves the gateway in the same envelope:
//
//	HTTP/1.1 422 Unprocessable Entity
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "validation_failed",
//	  "message": "rating must be between 1 and 5",
//	  "details": {"rating": "out of range"}
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants, or the
	// backend's own code for relayed failures).
	Code string `json:"code" example:"not_found"`
	// Safe to show to users.
	Message string `json:"message" example:"resource not found"`
	// Structured validation details relayed from a backend 400 or 422.
	Details any `json:"details,omitempty" swaggertype:"object"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	abort(c, status, ErrorResponse{Code: code, Message: msg})
}

// failAPI aborts with a normalized upstream failure. Status 0 (the request
// never got a response) goes out as 502 and a missing code as upstream_error.
// The message is always the user-facing one.
func failAPI(c *gin.Context, ae *apierror.APIError) {
	status := ae.Status()
	if status == 0 {
		status = http.StatusBadGateway
	}
	resp := ErrorResponse{Code: ae.Code(), Message: apierror.UserMessage(ae)}
	if resp.Code == "" {
		resp.Code = ErrCodeUpstream
	}
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		// Plain-text bodies are not relayed; they may be proxy error pages.
		if _, text := ae.Details().(string); !text {
			resp.Details = ae.Details()
		}
	}
	abort(c, status, resp)
}

func abort(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = middleware.FirstRequestID(c)

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
