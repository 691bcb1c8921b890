// Package dispatch implements the HTTP dispatch function shared by every
// storefront service wrapper.
//
// A call names a logical service ("auth", "catalog", ...), a path, a method
// and an optional JSON body. The client resolves the service's base URL,
// performs exactly one HTTP round trip and either decodes the success payload
// or fails with an *apierror.APIError. There is no retry, caching or
// deduplication: every call is independent.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/observability"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "storefront-gateway"
	// maxResponseBytes caps how much of an upstream body is read.
	maxResponseBytes = 8 << 20
)

// Config selects where each logical service lives.
type Config struct {
	// Services maps a logical service name to its base URL.
	Services map[string]string
	// DefaultBaseURL is used for services missing from Services.
	DefaultBaseURL string
	// Timeout bounds a single round trip. Defaults to 15s.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRegistry attaches the route registry used by Invoke.
func WithRegistry(reg *routes.Registry) Option {
	return func(c *Client) { c.registry = reg }
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client performs dispatch calls. It is safe for concurrent use.
type Client struct {
	http        *http.Client
	services    map[string]string
	defaultBase string
	userAgent   string
	registry    *routes.Registry
	log         zerolog.Logger
}

// New validates cfg and builds a Client. The default transport is
// instrumented with OpenTelemetry.
func New(cfg Config, opts ...Option) (*Client, error) {
	var errs []error
	services := make(map[string]string, len(cfg.Services))
	for name, raw := range cfg.Services {
		base, err := normalizeBase(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("service %q: %w", name, err))
			continue
		}
		services[name] = base
	}
	var def string
	if strings.TrimSpace(cfg.DefaultBaseURL) != "" {
		b, err := normalizeBase(cfg.DefaultBaseURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("default base url: %w", err))
		}
		def = b
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	c := &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: observability.HTTPTransport(nil),
		},
		services:    services,
		defaultBase: def,
		userAgent:   ua,
		log:         log.With().Str("component", "dispatch").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func normalizeBase(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%q is not an absolute http(s) url", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// Registry returns the attached route registry, possibly nil.
func (c *Client) Registry() *routes.Registry { return c.registry }

// BaseURL resolves the base URL for a logical service.
func (c *Client) BaseURL(service string) (string, error) {
	if b, ok := c.services[service]; ok {
		return b, nil
	}
	if c.defaultBase != "" {
		return c.defaultBase, nil
	}
	return "", apierror.New(fmt.Sprintf("no base url configured for service %q", service), http.StatusInternalServerError, "unknown_service", nil)
}

// Request is a single dispatch call.
type Request struct {
	Service string
	Method  string
	Path    string
	Query   url.Values
	Header  http.Header
	// Body is JSON-encoded when non-nil. Ignored when RawBody is set.
	Body any
	// RawBody is sent verbatim as application/json.
	RawBody []byte
}

// Response is a successful upstream reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Do is the dispatch function: it sends method path to service with body
// JSON-encoded when non-nil, and decodes a 2xx payload into out when out is
// non-nil. Every failure is an *apierror.APIError.
func (c *Client) Do(ctx context.Context, service, path, method string, body, out any) error {
	resp, err := c.Send(ctx, Request{Service: service, Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// Invoke dispatches the registry route for key, expanding params into the
// path template.
func (c *Client) Invoke(ctx context.Context, key routes.Key, params map[string]string, body, out any) error {
	return c.InvokeQuery(ctx, key, params, nil, body, out)
}

// InvokeQuery is Invoke with a query string. The call runs in an internal
// span named after the route key; the HTTP client span nests under it.
func (c *Client) InvokeQuery(ctx context.Context, key routes.Key, params map[string]string, query url.Values, body, out any) (err error) {
	ctx, span := otel.Tracer("dispatch").Start(ctx, "dispatch "+key.String(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("storefront.route", key.String())),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, apierror.Normalize(err).Code())
		}
		span.End()
	}()

	r, path, err := c.resolve(key, params)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("storefront.service", r.Service))
	resp, err := c.Send(ctx, Request{Service: r.Service, Method: r.Method, Path: path, Query: query, Body: body})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) resolve(key routes.Key, params map[string]string) (routes.Route, string, error) {
	if c.registry == nil {
		return routes.Route{}, "", apierror.New("dispatch client has no route registry", http.StatusInternalServerError, "no_registry", nil)
	}
	r, err := c.registry.Route(key)
	if err != nil {
		return routes.Route{}, "", apierror.New(err.Error(), http.StatusInternalServerError, "unknown_route", err)
	}
	path, err := r.Expand(params)
	if err != nil {
		return routes.Route{}, "", apierror.New(err.Error(), http.StatusBadRequest, "invalid_argument", err)
	}
	return r, path, nil
}

// Send performs one round trip and returns the raw 2xx reply.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	base, err := c.BaseURL(req.Service)
	if err != nil {
		return nil, c.failed(req.Service, method, req.Path, start, err)
	}

	var payload io.Reader
	switch {
	case req.RawBody != nil:
		payload = bytes.NewReader(req.RawBody)
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, c.failed(req.Service, method, req.Path, start,
				apierror.New("request body could not be encoded", http.StatusInternalServerError, "encode_failed", err))
		}
		payload = bytes.NewReader(b)
	}

	target := base + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	hreq, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, c.failed(req.Service, method, req.Path, start,
			apierror.New("request could not be built", http.StatusInternalServerError, "bad_request_url", err))
	}
	for k, vv := range req.Header {
		for _, v := range vv {
			hreq.Header.Add(k, v)
		}
	}
	hreq.Header.Set("Accept", "application/json")
	if payload != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("User-Agent", c.userAgent)
	if tok := BearerToken(ctx); tok != "" {
		hreq.Header.Set("Authorization", "Bearer "+tok)
	}
	if rid := RequestID(ctx); rid != "" {
		hreq.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		return nil, c.failed(req.Service, method, req.Path, start, apierror.NetworkFailure{Err: err})
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	_ = resp.Body.Close()
	if err != nil {
		return nil, c.failed(req.Service, method, req.Path, start, apierror.NetworkFailure{Err: err})
	}
	if len(raw) > maxResponseBytes {
		return nil, c.failed(req.Service, method, req.Path, start,
			apierror.New("upstream response too large", http.StatusBadGateway, "response_too_large", nil))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.failed(req.Service, method, req.Path, start, apierror.FromResponse(resp.StatusCode, raw))
	}

	observe(req.Service, method, resp.StatusCode, start)
	c.log.Debug().
		Str("service", req.Service).
		Str("method", method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("upstream call")

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// failed normalizes err, records it and returns the APIError.
func (c *Client) failed(service, method, path string, start time.Time, err any) *apierror.APIError {
	ae := apierror.Normalize(err)
	observe(service, method, ae.Status(), start)
	c.log.Warn().
		Str("service", service).
		Str("method", method).
		Str("path", path).
		Int("status", ae.Status()).
		Str("code", ae.Code()).
		Dur("latency", time.Since(start)).
		Msg(ae.Message())
	return ae
}

func decode(resp *Response, out any) error {
	if out == nil || resp.Status == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apierror.New("upstream returned an unreadable payload", http.StatusBadGateway, "decode_failed", err)
	}
	return nil
}
