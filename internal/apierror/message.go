package apierror

import (
	"fmt"
	"net/http"
)

// User-facing messages for the statuses that get fixed wording.
const (
	MsgNetwork        = "Network error — please check your connection"
	MsgAuthentication = "Authentication required"
)

// UserMessage maps a failure to a string safe to show to an end user.
//
// Status 0 yields MsgNetwork, status 401 yields MsgAuthentication, anything
// else yields the failure message. When no message can be found the value is
// stringified. v is never mutated.
func UserMessage(v any) string {
	var status int
	var msg string

	switch x := v.(type) {
	case *APIError:
		if x == nil {
			return UnknownMessage
		}
		status, msg = x.status, x.message
	case HTTPFailure:
		ae := fromHTTP(x)
		status, msg = ae.status, ae.message
	case NetworkFailure:
		status = 0
	default:
		ae := Normalize(v)
		status, msg = ae.status, ae.message
	}

	switch status {
	case 0:
		return MsgNetwork
	case http.StatusUnauthorized:
		return MsgAuthentication
	}
	if msg != "" {
		return msg
	}
	return fmt.Sprint(v)
}
