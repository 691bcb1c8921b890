package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
	"github.com/tbourn/go-storefront-gateway/internal/http/middleware"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

// Forward returns the handler that proxies rt to its backend service.
//
// Path params are expanded into the route template, the query string is
// copied as is and, for POST/PUT/PATCH, the JSON body is sent verbatim. A 2xx
// reply is relayed with its status, content type and body.
//
// Failures are normalized, surfaced through the notifier and answered with
// the error envelope: the message is the user-facing one and the status is
// the upstream status, or 502 when the backend could not be reached.
func (h *Handlers) Forward(rt routes.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		path, err := rt.Expand(params)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error())
			return
		}

		var raw []byte
		if rt.HasBody() {
			raw, err = c.GetRawData()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
					return
				}
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, "request body could not be read")
				return
			}
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 {
				raw = nil
			} else if !json.Valid(raw) {
				fail(c, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON body")
				return
			}
		}

		resp, err := h.upstream.Send(c.Request.Context(), dispatch.Request{
			Service: rt.Service,
			Method:  rt.Method,
			Path:    path,
			Query:   c.Request.URL.Query(),
			RawBody: raw,
		})
		if err != nil {
			h.upstreamFailed(c, rt, err)
			return
		}

		switch {
		case resp.Status == http.StatusNoContent:
			noContent(c)
			return
		case len(resp.Body) == 0:
			c.Status(resp.Status)
			return
		}
		ct := resp.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/json"
		}
		c.Data(resp.Status, ct, resp.Body)
	}
}

func (h *Handlers) upstreamFailed(c *gin.Context, rt routes.Route, err error) {
	ae := apierror.Normalize(err)
	if h.notifier != nil {
		h.notifier.ShowError(c.Request.Context(), ae)
	}
	middleware.LoggerFrom(c).Warn().
		Str("route", rt.Key().String()).
		Int("upstream_status", ae.Status()).
		Str("code", ae.Code()).
		Msg("upstream call failed")
	failAPI(c, ae)
}
