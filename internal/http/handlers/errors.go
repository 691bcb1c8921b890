// Package handlers defines HTTP-layer error codes used by the gateway's own
// endpoints and by the registry forwarder.
//
// Codes are lowercase snake_case. Generic codes mirror HTTP status semantics;
// upstream failures keep the code the backend sent and fall back to
// ErrCodeUpstream when it sent none.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_token",
//	  "message": "Authentication required"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodePayloadTooLarge  = "payload_too_large"
	ErrCodeInternal         = "internal_error"

	// Gateway-specific:
	ErrCodeInvalidJSON     = "invalid_json"
	ErrCodeInvalidArgument = "invalid_argument"
	ErrCodeUpstream        = "upstream_error"
	ErrCodeJournalDisabled = "journal_disabled"
	ErrCodeListFailed      = "list_failed"
)
