// Package services wraps each storefront domain in a typed client.
//
// Every wrapper resolves its operation through the route registry and hands
// the call to a Dispatcher. Wrappers only validate what they must put in a
// URL (ids); payloads are forwarded unchanged and every failure comes back
// as an *apierror.APIError.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

// CodeInvalidArgument is returned when a required id is blank.
const CodeInvalidArgument = "invalid_argument"

// Dispatcher performs a registry call. *dispatch.Client satisfies it.
type Dispatcher interface {
	Invoke(ctx context.Context, key routes.Key, params map[string]string, body, out any) error
	InvokeQuery(ctx context.Context, key routes.Key, params map[string]string, query url.Values, body, out any) error
}

// requireID fails with 400 invalid_argument when value is blank.
func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierror.New(fmt.Sprintf("%s is required", field), http.StatusBadRequest, CodeInvalidArgument, nil)
	}
	return nil
}

func id(v string) map[string]string { return map[string]string{"id": v} }
