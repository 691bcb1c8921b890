package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v (body %q)", err, w.Body.String())
	}
	return er
}

func TestFail_UpstreamErrorIsLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-502")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/api/brands", func(c *gin.Context) {
		fail(c, http.StatusBadGateway, ErrCodeUpstream, "catalog unavailable")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/brands", nil))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	er := decodeError(t, w)
	if er.RequestID != "rid-502" || er.Code != ErrCodeUpstream || er.Message != "catalog unavailable" {
		t.Fatalf("unexpected body: %+v", er)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), `"status":502`) {
		t.Fatalf("expected error log, got: %s", buf.String())
	}
}

func TestFail_ClientErrorNotLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		// Request id only in the gin context, not yet on the response.
		c.Set("requestID", "rid-ctx")
		c.Set("logger", &logger)
		c.Next()
	})
	r.POST("/api/brand", func(c *gin.Context) {
		Fail(c, http.StatusBadRequest, ErrCodeInvalidJSON, "request body is not valid JSON")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/brand", strings.NewReader("{")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if er := decodeError(t, w); er.RequestID != "rid-ctx" || er.Code != ErrCodeInvalidJSON {
		t.Fatalf("unexpected body: %+v", er)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx should not be logged here: %s", buf.String())
	}
}

func TestFail_AbortsChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reached := false
	r.GET("/api/auth/me",
		func(c *gin.Context) { Fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required") },
		func(c *gin.Context) { reached = true },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if w.Code != http.StatusUnauthorized || reached {
		t.Fatalf("status=%d reached=%v", w.Code, reached)
	}
	if er := decodeError(t, w); er.RequestID != "" || er.Message != "Authentication required" {
		t.Fatalf("unexpected body: %+v", er)
	}
}

func TestSuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/reviews", func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"id": "r1", "rating": 5}) })
	r.DELETE("/api/reviews/r1", func(c *gin.Context) { noContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reviews", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["id"] != "r1" || int(body["rating"].(float64)) != 5 {
		t.Fatalf("unexpected body: %#v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/reviews/r1", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("204 expected with empty body, got %d %q", w.Code, w.Body.String())
	}
}

func TestFailAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name       string
		err        *apierror.APIError
		wantStatus int
		wantCode   string
		wantMsg    string
		details    bool
	}{
		{"network", apierror.Normalize(apierror.NetworkFailure{}), http.StatusBadGateway, "network_error", apierror.MsgNetwork, false},
		{"no code", apierror.New("gone", http.StatusGone, "", nil), http.StatusGone, ErrCodeUpstream, "gone", false},
		{"json details on 400", apierror.New("bad", http.StatusBadRequest, "bad_input", map[string]any{"name": "required"}), http.StatusBadRequest, "bad_input", "bad", true},
		{"text body on 400", apierror.New("bad", http.StatusBadRequest, "", "<html>proxy</html>"), http.StatusBadRequest, ErrCodeUpstream, "bad", false},
		{"details dropped on 409", apierror.New("dup", http.StatusConflict, "duplicate", map[string]any{"id": "b1"}), http.StatusConflict, "duplicate", "dup", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { failAPI(c, tc.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", w.Code, tc.wantStatus)
			}
			er := decodeError(t, w)
			if er.Code != tc.wantCode || er.Message != tc.wantMsg {
				t.Fatalf("unexpected envelope: %+v", er)
			}
			if (er.Details != nil) != tc.details {
				t.Fatalf("details = %#v; want present=%v", er.Details, tc.details)
			}
		})
	}
}
