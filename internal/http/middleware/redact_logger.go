package middleware

// RedactingLogger is the gateway's access logger. It scrubs obvious PII from
// request metadata before emitting logs and never logs request or response
// bodies. Proxied storefront traffic routinely carries emails in query strings
// (login lookups, user searches) and bearer tokens in headers, so both are
// masked.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Api-Key"},
//	}))

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// built-in sensitive headers ("Authorization", "Cookie", "Set-Cookie").
type RedactOptions struct {
	MaskHeaders []string
}

var (
	// UUIDs are redacted before phone numbers so the phone pattern does not
	// match the digit segments of an ID.
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only. Matches "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// redact scrubs IDs, emails and phone numbers from s, in that order.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// defaultMasked lists headers whose values never reach the log.
var defaultMasked = []string{"Authorization", "Cookie", "Set-Cookie"}

type headerScrubber map[string]struct{}

func newHeaderScrubber(extra []string) headerScrubber {
	hs := make(headerScrubber, len(defaultMasked)+len(extra))
	for _, h := range append(append([]string(nil), defaultMasked...), extra...) {
		if h = strings.TrimSpace(h); h != "" {
			hs[strings.ToLower(h)] = struct{}{}
		}
	}
	return hs
}

func (hs headerScrubber) scrub(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, masked := hs[strings.ToLower(k)]; masked {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = redact(strings.Join(vv, ", "))
	}
	return out
}

// accessEvent picks the access line level: error for 5xx or recorded gin
// errors, warn for 4xx, info otherwise.
func accessEvent(l *zerolog.Logger, c *gin.Context) *zerolog.Event {
	status := c.Writer.Status()
	switch {
	case status >= http.StatusInternalServerError, len(c.Errors) > 0:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	}
	return l.Info()
}

// RedactingLogger returns a Gin middleware that attaches a request-scoped
// logger and writes one access log line per request.
//
// The scoped logger carries request_id, method and path (the route template
// when one matched). It is stored in the Gin context (see LoggerFrom) and in
// the request context for code that only sees a context.Context.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	scrubber := newHeaderScrubber(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqID := FirstRequestID(c)

		l := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		query := truncate(redact(c.Request.URL.RawQuery), maxQueryLogLength)
		headers := scrubber.scrub(c.Request.Header)

		c.Next()

		ev := accessEvent(&l, c)
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		if uid, ok := c.Get(userIDKey); ok {
			ev = ev.Str("user_id", asString(uid))
		}
		ev.Str("query", query).
			Str("remote_ip", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
