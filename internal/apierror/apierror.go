// Package apierror defines the single error shape returned by the dispatch
// layer and the helpers that convert heterogeneous failures into it.
//
// Every failure that crosses the dispatch boundary (transport errors, non-2xx
// responses, encode/decode failures, foreign error values) is normalized once
// into an *APIError. Callers then map it to a user-facing string with
// UserMessage and surface it through the notification sink.
//
// An APIError is immutable: its fields are unexported and only readable
// through accessor methods, so a normalized value can be shared freely.
package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// DefaultStatus is applied when a failure carries no usable status.
const DefaultStatus = http.StatusInternalServerError

// UnknownMessage is the message used when nothing better is available.
const UnknownMessage = "Unknown error"

// Kind classifies an APIError into the closed failure taxonomy.
type Kind int

const (
	// KindHTTP is any failure carrying an HTTP status other than 0 and 401.
	KindHTTP Kind = iota
	// KindNetwork is a transport failure where no response arrived (status 0).
	KindNetwork
	// KindAuthentication is an HTTP 401.
	KindAuthentication
	// KindUnknown is a failure built from a value of no known shape.
	KindUnknown
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindAuthentication:
		return "authentication_error"
	case KindUnknown:
		return "unknown_error"
	default:
		return "http_error"
	}
}

// APIError is the normalized failure record.
//
// Fields:
//   - message: human-readable description.
//   - status:  HTTP status; 0 for network failures, 500 when unknown.
//   - code:    optional machine-readable code (snake_case).
//   - details: optional payload (upstream body, original error, ...).
type APIError struct {
	message string
	status  int
	code    string
	details any
	kind    Kind
}

// New constructs an APIError. Negative statuses become DefaultStatus and an
// empty message becomes UnknownMessage. The kind is derived from the status.
func New(message string, status int, code string, details any) *APIError {
	return build(message, status, code, details, kindForStatus(status))
}

func build(message string, status int, code string, details any, kind Kind) *APIError {
	if status < 0 {
		status = DefaultStatus
	}
	if message == "" {
		message = UnknownMessage
	}
	if kind != KindUnknown {
		kind = kindForStatus(status)
	}
	return &APIError{message: message, status: status, code: code, details: details, kind: kind}
}

func kindForStatus(status int) Kind {
	switch status {
	case 0:
		return KindNetwork
	case http.StatusUnauthorized:
		return KindAuthentication
	default:
		return KindHTTP
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return UnknownMessage
	}
	return e.message
}

// Message returns the human-readable message.
func (e *APIError) Message() string { return e.Error() }

// Status returns the HTTP status (0 for network failures).
func (e *APIError) Status() int {
	if e == nil {
		return DefaultStatus
	}
	return e.status
}

// Code returns the machine-readable code, possibly empty.
func (e *APIError) Code() string {
	if e == nil {
		return ""
	}
	return e.code
}

// Details returns the optional payload attached to the error.
func (e *APIError) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// Kind returns the taxonomy bucket of the error.
func (e *APIError) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.kind
}

// Unwrap exposes the original error when details holds one.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	if err, ok := e.details.(error); ok {
		return err
	}
	return nil
}

type wire struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// MarshalJSON renders {"message","status","code","details"}. Error values in
// details are rendered by their message.
func (e *APIError) MarshalJSON() ([]byte, error) {
	w := wire{Message: e.Message(), Status: e.Status(), Code: e.Code()}
	switch d := e.Details().(type) {
	case nil:
	case error:
		w.Details = d.Error()
	default:
		w.Details = d
	}
	return json.Marshal(w)
}

// KindOf returns the kind of err after normalization.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	return Normalize(err).Kind()
}

// IsKind reports whether err normalizes to kind k.
func IsKind(err error, k Kind) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind() == k
	}
	return err != nil && KindOf(err) == k
}
