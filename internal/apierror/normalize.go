package apierror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Failure is the closed set of failure shapes Normalize understands besides
// *APIError itself. The unexported marker method keeps the set sealed.
type Failure interface {
	failure()
}

// NetworkFailure is a transport failure: the request never got a response.
type NetworkFailure struct {
	Err error
}

func (NetworkFailure) failure() {}

// Error implements error so the shape can travel through error returns.
func (f NetworkFailure) Error() string {
	if f.Err == nil || isNilPointer(f.Err) {
		return "network error"
	}
	return f.Err.Error()
}

// Unwrap returns the transport error.
func (f NetworkFailure) Unwrap() error {
	if isNilPointer(f.Err) {
		return nil
	}
	return f.Err
}

// HTTPFailure is a response that arrived with a non-success status.
type HTTPFailure struct {
	Status  int
	Message string
	Code    string
	Body    any
}

func (HTTPFailure) failure() {}

// Error implements error so the shape can travel through error returns.
func (f HTTPFailure) Error() string {
	if f.Message != "" {
		return f.Message
	}
	return fmt.Sprintf("http %d", f.Status)
}

// Normalize converts any failure value into an *APIError.
//
//   - nil                      -> ("Unknown error", 500)
//   - *APIError                -> returned unchanged
//   - NetworkFailure           -> status 0, code "network_error"
//   - HTTPFailure              -> its status (500 when unset), message, code, body
//   - error wrapping the above -> same as the wrapped shape
//   - transport errors         -> network shape
//   - map[string]any           -> read like a decoded error envelope
//   - any other value          -> its text, status 500, KindUnknown
//
// Normalize never mutates its input and is idempotent.
func Normalize(v any) *APIError {
	switch x := v.(type) {
	case nil:
		return New(UnknownMessage, DefaultStatus, "", nil)
	case *APIError:
		if x == nil {
			return New(UnknownMessage, DefaultStatus, "", nil)
		}
		return x
	case APIError:
		c := x
		return &c
	case NetworkFailure:
		return fromNetwork(x)
	case *NetworkFailure:
		if x == nil {
			return New(UnknownMessage, DefaultStatus, "", nil)
		}
		return fromNetwork(*x)
	case HTTPFailure:
		return fromHTTP(x)
	case *HTTPFailure:
		if x == nil {
			return New(UnknownMessage, DefaultStatus, "", nil)
		}
		return fromHTTP(*x)
	case error:
		return fromError(x)
	case map[string]any:
		if f, ok := failureFromMap(x); ok {
			return fromHTTP(f)
		}
		return build(fmt.Sprint(x), DefaultStatus, "", x, KindUnknown)
	case string:
		return build(x, DefaultStatus, "", x, KindUnknown)
	default:
		return build(fmt.Sprint(v), DefaultStatus, "", v, KindUnknown)
	}
}

func fromNetwork(f NetworkFailure) *APIError {
	msg := "network error"
	var details any
	if f.Err != nil && !isNilPointer(f.Err) {
		if text := f.Err.Error(); text != "" {
			msg = text
		}
		details = f.Err
	}
	return New(msg, 0, "network_error", details)
}

func fromHTTP(f HTTPFailure) *APIError {
	status := f.Status
	if status <= 0 {
		status = DefaultStatus
	}
	msg := f.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return New(msg, status, f.Code, f.Body)
}

func fromError(err error) *APIError {
	// A typed nil would panic in Unwrap or Error below.
	if isNilPointer(err) {
		return New(UnknownMessage, DefaultStatus, "", nil)
	}
	var ae *APIError
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	var nf NetworkFailure
	if errors.As(err, &nf) {
		return fromNetwork(nf)
	}
	var hf HTTPFailure
	if errors.As(err, &hf) {
		return fromHTTP(hf)
	}
	if isTransport(err) {
		return fromNetwork(NetworkFailure{Err: err})
	}
	return build(err.Error(), DefaultStatus, "", err, KindUnknown)
}

// isNilPointer reports whether err is a nil pointer held in a non-nil
// interface, e.g. error((*url.Error)(nil)).
func isNilPointer(err error) bool {
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// failureFromMap reads status, message and code from a decoded JSON object.
// It reports false when the map carries neither a status nor a message.
func failureFromMap(m map[string]any) (HTTPFailure, bool) {
	status, hasStatus := mapInt(m["status"])
	if !hasStatus {
		status, hasStatus = mapInt(m["statusCode"])
	}
	var msg string
	for _, k := range []string{"message", "error", "msg"} {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			msg = s
			break
		}
	}
	if !hasStatus && msg == "" {
		return HTTPFailure{}, false
	}
	f := HTTPFailure{Status: status, Message: msg, Body: m}
	switch c := m["code"].(type) {
	case string:
		f.Code = strings.TrimSpace(c)
	case float64, int, json.Number:
		f.Code = fmt.Sprint(c)
	}
	if d, ok := m["details"]; ok && d != nil {
		f.Body = d
	}
	return f, true
}

// mapInt accepts the number types encoding/json and hand-built maps produce.
func mapInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// isTransport reports whether err came from the network stack rather than
// from a response.
func isTransport(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// upstreamBody is the union of error envelopes seen from backends.
type upstreamBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Msg     string          `json:"msg"`
	Title   string          `json:"title"`
	Detail  string          `json:"detail"`
	Code    json.RawMessage `json:"code"`
	Details any             `json:"details"`
}

// FromResponse builds the APIError for a non-success upstream response.
//
// JSON bodies are searched for a message (message, error, msg, title, detail),
// a code and details. Non-JSON bodies are attached as trimmed text.
func FromResponse(status int, body []byte) *APIError {
	f := HTTPFailure{Status: status}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fromHTTP(f)
	}

	var ub upstreamBody
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &ub) != nil {
		f.Body = truncate(string(trimmed), 2048)
		return fromHTTP(f)
	}

	f.Message = firstNonEmpty(ub.Message, rawString(ub.Error), ub.Msg, ub.Title, ub.Detail)
	f.Code = rawString(ub.Code)
	if f.Code == "" {
		f.Code = nestedCode(ub.Error)
	}
	if ub.Details != nil {
		f.Body = ub.Details
	} else {
		var generic map[string]any
		if json.Unmarshal(trimmed, &generic) == nil {
			f.Body = generic
		}
	}
	return fromHTTP(f)
}

// rawString returns a JSON string or number as text; objects yield their
// "message" field.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}

// nestedCode extracts {"error":{"code":"..."}}.
func nestedCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Code json.RawMessage `json:"code"`
	}
	if json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	return rawString(obj.Code)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "…"
}
