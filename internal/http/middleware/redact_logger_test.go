package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type accessLine struct {
	Level     string            `json:"level"`
	RequestID string            `json:"request_id"`
	Path      string            `json:"path"`
	Query     string            `json:"query"`
	Status    int               `json:"status"`
	UserID    string            `json:"user_id"`
	Errors    string            `json:"errors"`
	Headers   map[string]string `json:"headers"`
	Message   string            `json:"message"`
}

// accessLines installs a JSON global logger and returns a func that decodes
// the http_request lines written so far.
func accessLines(t *testing.T) func() []accessLine {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)

	return func() []accessLine {
		var out []accessLine
		for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
			if len(raw) == 0 {
				continue
			}
			var l accessLine
			if err := json.Unmarshal(raw, &l); err != nil {
				t.Fatalf("bad log line %q: %v", raw, err)
			}
			if l.Message == "http_request" {
				out = append(out, l)
			}
		}
		return out
	}
}

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lines := accessLines(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-resp")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{" x-api-key "}}))
	r.GET("/api/users/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=jane.doe+shop@example.com&phone=+1-555-123-4567&cart=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/api/users/u-9?"+q, nil)
	req.Header.Set("Authorization", "Bearer eyJhbGciOi")
	req.Header.Set("Cookie", "sid=abc")
	req.Header.Set("X-Api-Key", "k-123")
	req.Header.Set("X-Forwarded-For-User", "contact jane@shop.io")
	req.Header.Set(requestIDHeader, "rid-req")
	r.ServeHTTP(httptest.NewRecorder(), req)

	got := lines()
	if len(got) != 1 {
		t.Fatalf("want 1 access line, got %d", len(got))
	}
	l := got[0]
	if l.Level != "info" || l.Status != http.StatusOK || l.Path != "/api/users/:id" || l.RequestID != "rid-resp" {
		t.Fatalf("unexpected line: %+v", l)
	}
	if strings.Contains(l.Query, "example.com") || strings.Contains(l.Query, "555") || strings.Contains(l.Query, "e89b") {
		t.Fatalf("query not scrubbed: %q", l.Query)
	}
	for _, tag := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(l.Query, tag) {
			t.Fatalf("query %q missing %s", l.Query, tag)
		}
	}
	for _, h := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if l.Headers[h] != "[REDACTED]" {
			t.Fatalf("%s = %q; want masked", h, l.Headers[h])
		}
	}
	if got := l.Headers["X-Forwarded-For-User"]; got != "contact [REDACTED:email]" {
		t.Fatalf("pattern-scrubbed header = %q", got)
	}
}

func TestRedactingLogger_Levels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		handler gin.HandlerFunc
		level   string
	}{
		{"2xx", func(c *gin.Context) { c.Status(http.StatusNoContent) }, "info"},
		{"4xx", func(c *gin.Context) { c.Status(http.StatusConflict) }, "warn"},
		{"5xx", func(c *gin.Context) { c.Status(http.StatusBadGateway) }, "error"},
		{"gin error on 4xx", func(c *gin.Context) {
			_ = c.Error(errors.New("decode failed"))
			c.Status(http.StatusBadRequest)
		}, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := accessLines(t)
			r := gin.New()
			r.Use(RedactingLogger(RedactOptions{}))
			r.GET("/api/orders", tc.handler)

			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			req.Header.Set(requestIDHeader, "rid-in")
			r.ServeHTTP(httptest.NewRecorder(), req)

			got := lines()
			if len(got) != 1 || got[0].Level != tc.level {
				t.Fatalf("lines = %+v; want one %s line", got, tc.level)
			}
			if got[0].RequestID != "rid-in" {
				t.Fatalf("request_id should fall back to the inbound header, got %q", got[0].RequestID)
			}
		})
	}
}

func TestRedactingLogger_UserErrorsAndTruncation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lines := accessLines(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.Use(func(c *gin.Context) { c.Set(userIDKey, "u-42"); c.Next() })
	r.GET("/api/reviews", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusBadRequest)
	})

	long := "q=" + strings.Repeat("a", maxQueryLogLength+10)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/reviews?"+long, nil))

	l := lines()[0]
	if l.UserID != "u-42" || !strings.HasPrefix(l.Errors, "Error #01: boom") {
		t.Fatalf("unexpected line: %+v", l)
	}
	if !strings.HasSuffix(l.Query, "…") || len(l.Query) != maxQueryLogLength+len("…") {
		t.Fatalf("query not truncated, len %d", len(l.Query))
	}
	if l.RequestID == "" {
		t.Fatalf("RequestID middleware id not logged")
	}
}

func TestRedactingLogger_ScopedLoggerInRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.GET("/api/brands", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("from ctx")
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/brands", nil)
	req.Header.Set(requestIDHeader, "rid-ctx")
	r.ServeHTTP(httptest.NewRecorder(), req)

	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(first, `"message":"from ctx"`) || !strings.Contains(first, `"request_id":"rid-ctx"`) {
		t.Fatalf("context logger missing scope: %s", first)
	}
}

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"123e4567-e89b-12d3-a456-426614174000": "[REDACTED:id]",
		"mail ops@store.example.org now":       "mail [REDACTED:email] now",
		"call (212) 555-1212":                  "call ([REDACTED:phone]",
		"sku=ABC":                              "sku=ABC",
	}
	for in, want := range cases {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestNewHeaderScrubber_MergesDefaults(t *testing.T) {
	hs := newHeaderScrubber([]string{"X-Api-Key", "", "  "})
	for _, h := range []string{"authorization", "cookie", "set-cookie", "x-api-key"} {
		if _, ok := hs[h]; !ok {
			t.Fatalf("%s not masked", h)
		}
	}
	if len(hs) != 4 {
		t.Fatalf("blank names should be ignored, got %d entries", len(hs))
	}
}
